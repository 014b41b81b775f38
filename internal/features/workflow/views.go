// Package workflow — конечный автомат экранов NeedBook и обработчики действий,
// которые создают сущности и начисляют очки.
// views.go описывает экраны, таблицу переходов и единственный guard верификации.
package workflow

// View — экран приложения.
type View string

const (
	ViewOnboarding View = "onboarding"
	ViewVerify     View = "verify"
	ViewHome       View = "home"
	ViewRequest    View = "request"
	ViewList       View = "list"
	ViewMatches    View = "matches"
	ViewRewards    View = "rewards"
	ViewFeedback   View = "feedback"
	ViewChat       View = "chat"
	ViewBuddy      View = "buddy"
)

// ContentViews — экраны за проверкой верификации.
var ContentViews = []View{
	ViewHome, ViewRequest, ViewList, ViewMatches, ViewRewards, ViewFeedback, ViewChat, ViewBuddy,
}

// NavViews — экраны нижней навигации (плюс Buddy из шапки).
var NavViews = []View{ViewHome, ViewRequest, ViewList, ViewMatches, ViewRewards, ViewBuddy}

var titles = map[View]string{
	ViewOnboarding: "Welcome to NeedBook",
	ViewVerify:     "Verification",
	ViewHome:       "Urgent Requests",
	ViewRequest:    "Need a Book?",
	ViewList:       "List a Book",
	ViewMatches:    "Nearby Matches",
	ViewRewards:    "Your Rank",
	ViewFeedback:   "Share Feedback",
	ViewChat:       "Messages",
	ViewBuddy:      "Buddy Support",
}

// Title — заголовок экрана.
func (v View) Title() string {
	if t, ok := titles[v]; ok {
		return t
	}
	return "NeedBook"
}

// IsContent — экран требует верификации.
func (v View) IsContent() bool {
	for _, c := range ContentViews {
		if c == v {
			return true
		}
	}
	return false
}

// IsNav — экран доступен через навигацию.
func (v View) IsNav() bool {
	for _, n := range NavViews {
		if n == v {
			return true
		}
	}
	return false
}

// ParseView разбирает имя экрана.
func ParseView(s string) (View, bool) {
	v := View(s)
	if _, ok := titles[v]; ok {
		return v, true
	}
	return "", false
}

// Action — действие пользователя, переводящее автомат в новый экран.
type Action string

const (
	ActCompleteOnboarding Action = "complete_onboarding"
	ActVerify             Action = "verify"
	ActPostRequest        Action = "post_request"
	ActPostListing        Action = "post_listing"
	ActSelectListing      Action = "select_listing"
	ActFulfillRequest     Action = "fulfill_request"
	ActSubmitFeedback     Action = "submit_feedback"
)

// transitions — куда ведёт каждое действие.
//
//	onboarding --complete_onboarding--> verify
//	verify     --verify---------------> home
//	request    --post_request---------> matches
//	list       --post_listing---------> matches
//	matches    --select_listing-------> chat
//	home       --fulfill_request------> feedback
//	feedback   --submit_feedback------> home
var transitions = map[Action]View{
	ActCompleteOnboarding: ViewVerify,
	ActVerify:             ViewHome,
	ActPostRequest:        ViewMatches,
	ActPostListing:        ViewMatches,
	ActSelectListing:      ViewChat,
	ActFulfillRequest:     ViewFeedback,
	ActSubmitFeedback:     ViewHome,
}

// Target возвращает экран, в который ведёт действие.
func Target(a Action) (View, bool) {
	v, ok := transitions[a]
	return v, ok
}

// Gate — guard верификации. Применяется и при переходе, и при каждом рендере:
// непроверенный пользователь вместо любого контентного экрана видит verify,
// проверенный вместо verify видит home.
func Gate(v View, verified bool) View {
	switch {
	case !verified && v.IsContent():
		return ViewVerify
	case verified && v == ViewVerify:
		return ViewHome
	default:
		return v
	}
}
