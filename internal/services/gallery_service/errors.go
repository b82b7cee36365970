package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput список изображений пуст или содержит некорректный элемент
	ErrInvalidInput = errors.New("invalid-input")
	// ErrEmptyName имя галереи пустое после очистки
	ErrEmptyName = errors.New("empty-name")
	// ErrNeedConfirm имя занято другой галереей, нужна явная перезапись
	ErrNeedConfirm = errors.New("need-confirm")
	// ErrNameTaken восстановление невозможно: имя уже занято другой галереей
	ErrNameTaken = errors.New("name-taken")
)

// ConfirmError возвращается, когда сохранение перезапишет галерею Name
type ConfirmError struct {
	Name string
}

func (e *ConfirmError) Error() string {
	return fmt.Sprintf("%s: gallery %q already exists", ErrNeedConfirm, e.Name)
}

func (e *ConfirmError) Unwrap() error {
	return ErrNeedConfirm
}
