package rewards

// Tier — порог ранга.
type Tier struct {
	Tag       Tag
	MinPoints int
}

// Tiers — таблица рангов по возрастанию порога.
//
//	Book Starter        0
//	Helpful Reader      51
//	Campus Contributor  151
//	Study Hero          301
//	Book Champion       501
var Tiers = []Tier{
	{TagBookStarter, 0},
	{TagHelpfulReader, 51},
	{TagCampusContributor, 151},
	{TagStudyHero, 301},
	{TagBookChampion, 501},
}

// TagFor возвращает ранг с наибольшим порогом <= points.
func TagFor(points int) Tag {
	tag := Tiers[0].Tag
	for _, t := range Tiers {
		if points >= t.MinPoints {
			tag = t.Tag
		}
	}
	return tag
}

// Progress — прогресс до следующего ранга (для экрана наград).
type Progress struct {
	Current    Tier
	Next       Tier
	HasNext    bool // false на последнем ранге
	PointsLeft int  // Сколько очков осталось до Next
	Percent    int  // 0..100 внутри текущего ранга
}

// ProgressFor считает прогресс для заданного числа очков.
func ProgressFor(points int) Progress {
	tag := TagFor(points)
	p := Progress{Current: Tiers[tag], Percent: 100}

	if int(tag)+1 >= len(Tiers) {
		return p
	}

	next := Tiers[tag+1]
	p.Next = next
	p.HasNext = true
	p.PointsLeft = next.MinPoints - points

	span := next.MinPoints - p.Current.MinPoints
	done := points - p.Current.MinPoints
	if done < 0 {
		done = 0
	}
	p.Percent = done * 100 / span
	return p
}
