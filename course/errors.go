package course

import "errors"

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidValue    = errors.New("invalid value")
	ErrWrongCardType   = errors.New("operation does not apply to this card type")
	ErrWrongVariant    = errors.New("operation does not apply to this variant")
	ErrUnknownVariant  = errors.New("unknown variant")
)
