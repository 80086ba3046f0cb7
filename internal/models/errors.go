package models

import "errors"

var (
	// ErrNotFound - инцидент с таким id не существует
	ErrNotFound = errors.New("incident not found")
	// ErrInvalidRange - границы запроса по сетке отсутствуют или min > max
	ErrInvalidRange = errors.New("invalid grid range")
	// ErrValidation - значения полей вне допустимого диапазона или недопустимый переход
	ErrValidation = errors.New("validation error")
	// ErrEmpty - в реестре нет ни одного инцидента (только для случайного выбора)
	ErrEmpty = errors.New("no incidents")
)
