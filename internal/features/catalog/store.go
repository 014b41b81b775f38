// Package catalog — store.go держит коллекции сессии в памяти.
// Новые записи всегда добавляются в начало, остальные сохраняют порядок.
package catalog

import (
	"sync"

	"needbook.app/telegram-bot/internal/common"
)

// Store — хранилище сущностей одной сессии.
type Store struct {
	mu       sync.RWMutex
	requests []BookRequest
	listings []BookListing
	profile  *UserProfile
	verified bool
}

// NewStore создаёт хранилище с начальными данными.
func NewStore(seed Seed) *Store {
	s := &Store{
		requests: make([]BookRequest, len(seed.Requests)),
		listings: make([]BookListing, len(seed.Listings)),
	}
	copy(s.requests, seed.Requests)
	copy(s.listings, seed.Listings)
	return s
}

// Requests возвращает копию запросов, новые первыми.
func (s *Store) Requests() []BookRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BookRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Listings возвращает объявления, новые первыми.
// Пустой mode — все объявления, иначе только с этим типом сделки.
func (s *Store) Listings(mode ExchangeMode) []BookListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BookListing, 0, len(s.listings))
	for _, l := range s.listings {
		if mode == "" || l.Mode == mode {
			out = append(out, l)
		}
	}
	return out
}

// PrependRequest добавляет запрос в начало коллекции.
func (s *Store) PrependRequest(r BookRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append([]BookRequest{r}, s.requests...)
}

// PrependListing добавляет объявление в начало коллекции.
func (s *Store) PrependListing(l BookListing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append([]BookListing{l}, s.listings...)
}

// Request ищет запрос по id.
func (s *Store) Request(id string) (BookRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return BookRequest{}, common.ErrRequestNotFound
}

// Listing ищет объявление по id.
func (s *Store) Listing(id string) (BookListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return BookListing{}, common.ErrListingNotFound
}

// SetProfile сохраняет профиль. Повторно задать нельзя.
func (s *Store) SetProfile(p UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile != nil {
		return common.ErrProfileAlreadySet
	}
	s.profile = &p
	return nil
}

// Profile возвращает профиль, если онбординг пройден.
func (s *Store) Profile() (UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return UserProfile{}, false
	}
	return *s.profile, true
}

// MarkVerified выставляет флаг верификации.
func (s *Store) MarkVerified() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified = true
}

// Verified — прошёл ли пользователь проверку email.
func (s *Store) Verified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verified
}
