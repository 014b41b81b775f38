package assist

import (
	"context"
	"sync"
)

// Key — поле формы или экран, к которому относится фоновый запрос.
type Key string

const (
	KeySubjects Key = "subjects"
	KeyPrice    Key = "price"
	KeyUrgency  Key = "urgency"
	KeySummary  Key = "summary"
	KeyBuddy    Key = "buddy"
)

// Ticket — идентичность одного запуска задачи.
type Ticket struct {
	Key Key
	id  uint64
}

type task struct {
	id     uint64
	cancel context.CancelFunc
}

// Tasks — реестр фоновых AI-запросов одной сессии.
// На каждый ключ не больше одной актуальной задачи: новый запуск отменяет
// предыдущий, а применить результат может только последний Ticket.
type Tasks struct {
	mu      sync.Mutex
	seq     uint64
	running map[Key]task
}

// NewTasks создаёт пустой реестр.
func NewTasks() *Tasks {
	return &Tasks{running: make(map[Key]task)}
}

// Begin запускает задачу по ключу и отменяет предыдущую с тем же ключом.
// Возвращённый ctx отменяется при вытеснении, Cancel или CancelAll.
func (t *Tasks) Begin(parent context.Context, key Key) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.running[key]; ok {
		prev.cancel()
	}
	t.seq++
	t.running[key] = task{id: t.seq, cancel: cancel}
	return ctx, Ticket{Key: key, id: t.seq}
}

// Busy — есть ли незавершённая задача по ключу.
func (t *Tasks) Busy(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.running[key]
	return ok
}

// Finish завершает задачу. true — тикет актуален и результат можно применять;
// false — задачу вытеснили или отменили, результат надо выбросить.
func (t *Tasks) Finish(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.running[tk.Key]
	if !ok || cur.id != tk.id {
		return false
	}
	cur.cancel()
	delete(t.running, tk.Key)
	return true
}

// Cancel отменяет задачи по ключам.
func (t *Tasks) Cancel(keys ...Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, k := range keys {
		if cur, ok := t.running[k]; ok {
			cur.cancel()
			delete(t.running, k)
		}
	}
}

// CancelAll отменяет все задачи (конец сессии).
func (t *Tasks) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, cur := range t.running {
		cur.cancel()
		delete(t.running, k)
	}
}
