// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Обработчики различают их через errors.Is и подбирают понятный ответ.
package common

import "errors"

// Ошибки валидации форм (состояние не меняется, можно отправить заново)
var (
	// ErrPhotoRequired — к запросу не приложено фото
	ErrPhotoRequired = errors.New("photo attachment is required")
	// ErrEmailNotInstitutional — email не похож на студенческий
	ErrEmailNotInstitutional = errors.New("email is not an institutional address")
	// ErrRatingRequired — в отзыве ноль звёзд
	ErrRatingRequired = errors.New("at least one star is required")
	// ErrFieldRequired — обязательное поле пустое
	ErrFieldRequired = errors.New("required field is missing")
	// ErrFieldTooLong — поле длиннее допустимого
	ErrFieldTooLong = errors.New("field is too long")
	// ErrFieldInvalid — значение вне допустимого набора
	ErrFieldInvalid = errors.New("field value is invalid")
)

// Ошибки автомата экранов
var (
	// ErrOnboardingIncomplete — профиль ещё не заполнен
	ErrOnboardingIncomplete = errors.New("onboarding is not complete")
	// ErrProfileAlreadySet — профиль задаётся один раз за сессию
	ErrProfileAlreadySet = errors.New("profile is already set")
	// ErrNotVerified — действие доступно только после верификации
	ErrNotVerified = errors.New("student email is not verified")
	// ErrAlreadyVerified — повторная верификация
	ErrAlreadyVerified = errors.New("already verified")
	// ErrInvalidTransition — переход не описан в таблице
	ErrInvalidTransition = errors.New("transition is not allowed")
	// ErrActionOnlyView — экран открывается только действием (chat, feedback)
	ErrActionOnlyView = errors.New("view is reachable only through an action")
)

// Ошибки каталога
var (
	// ErrRequestNotFound — запрос с таким id не найден
	ErrRequestNotFound = errors.New("request not found")
	// ErrListingNotFound — объявление с таким id не найдено
	ErrListingNotFound = errors.New("listing not found")
)

// Ошибки сессий
var (
	// ErrSessionNotFound — сессия чата уже завершена
	ErrSessionNotFound = errors.New("session not found")
)
