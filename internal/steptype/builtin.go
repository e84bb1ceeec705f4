package steptype

import "github.com/spec-kit/ticket-bot/internal/domain"

// Built-in step-type identifiers.
const (
	TypeBoolean      = "boolean"
	TypeInteger      = "integer"
	TypeDouble       = "double"
	TypeString       = "string"
	TypeList         = "list"
	TypeSingleSelect = "single-select"
	TypeMultiSelect  = "multi-select"
)

var builtins = []Registration{
	{Info: Info{ID: TypeBoolean, Name: "Boolean", Description: "A yes or no question answered with a reaction.", Emoji: "☑️", AnswerKind: domain.AnswerBoolean}, Factory: NewBoolean},
	{Info: Info{ID: TypeInteger, Name: "Integer", Description: "A whole number, optionally bounded by min and max.", Emoji: "🔢", AnswerKind: domain.AnswerInteger}, Factory: NewInteger},
	{Info: Info{ID: TypeDouble, Name: "Double", Description: "A decimal number, optionally bounded by min and max.", Emoji: "➗", AnswerKind: domain.AnswerDouble}, Factory: NewDouble},
	{Info: Info{ID: TypeString, Name: "String", Description: "Free text up to maximumLength characters.", Emoji: "🔤", AnswerKind: domain.AnswerString}, Factory: NewString},
	{Info: Info{ID: TypeList, Name: "List", Description: "A list of text items, one message per item.", Emoji: "📜", AnswerKind: domain.AnswerList}, Factory: NewList},
	{Info: Info{ID: TypeSingleSelect, Name: "Single Selection", Description: "One option chosen by reaction.", Emoji: "❎", AnswerKind: domain.AnswerString}, Factory: NewSingleSelect},
	{Info: Info{ID: TypeMultiSelect, Name: "Multiple Selection", Description: "Several options chosen by reaction.", Emoji: "🗳️", AnswerKind: domain.AnswerList}, Factory: NewMultiSelect},
}

// RegisterBuiltins installs the seven built-in step types.
func RegisterBuiltins(r *Registry) error {
	for _, reg := range builtins {
		info := reg.Info
		info.Source = SourceBuiltin
		if err := r.Register(info, reg.Factory); err != nil {
			return err
		}
	}
	return nil
}

// NewBuiltinRegistry returns a registry holding only the built-ins.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
}
