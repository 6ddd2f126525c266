// Package forms provides the typed form-element model and the classifier that
// turns a rendered form step into elements the traversal engine can resolve.
package forms

// ElementKind identifies the interaction type of a form element.
type ElementKind string

// Element kinds, ordered roughly by classification precedence.
const (
	KindFreeText            ElementKind = "free_text"
	KindNumericText         ElementKind = "numeric_text"
	KindSingleChoice        ElementKind = "single_choice"
	KindMultiChoiceDropdown ElementKind = "multi_choice_dropdown"
	KindDate                ElementKind = "date"
	KindFileUpload          ElementKind = "file_upload"
	KindBooleanCheckbox     ElementKind = "boolean_checkbox"
)

// Option is one entry of an enumerated option set for choice kinds.
type Option struct {
	Text        string `json:"text"`
	Ref         string `json:"ref"`
	Placeholder bool   `json:"placeholder"`
}

// Constraints captures the declarative restrictions on an element.
type Constraints struct {
	Required bool     `json:"required"`
	Min      *int     `json:"min,omitempty"`
	Max      *int     `json:"max,omitempty"`
	Accept   []string `json:"accept,omitempty"` // accepted file types for uploads
}

// Element describes one interactive input on a form step. Elements are
// rebuilt on every scan of a step and never persisted.
type Element struct {
	Kind            ElementKind `json:"kind"`
	Label           string      `json:"label"`
	Signature       string      `json:"signature"`
	Ref             string      `json:"ref"`
	Widget          string      `json:"widget,omitempty"` // underlying tag: input, select, textarea
	Options         []Option    `json:"options,omitempty"`
	Constraints     Constraints `json:"constraints"`
	CurrentValue    string      `json:"current_value,omitempty"`
	Multiline       bool        `json:"multiline,omitempty"`
	ValidationError string      `json:"validation_error,omitempty"`
}

// Key returns the element's stable identity across re-renders of the same
// step: the normalized label plus the element role.
func (e *Element) Key() string {
	return string(e.Kind) + "|" + e.Signature
}

// Answered reports whether the element already carries a value.
func (e *Element) Answered() bool {
	return e.CurrentValue != ""
}

// FirstRealOption returns the first option that is not a placeholder entry
// such as "Select an option". ok is false when every option is a placeholder.
func (e *Element) FirstRealOption() (Option, bool) {
	for _, opt := range e.Options {
		if !opt.Placeholder {
			return opt, true
		}
	}
	return Option{}, false
}

// Action is the primary-action affordance of a step.
type Action struct {
	Ref    string `json:"ref"`
	Label  string `json:"label"`
	Submit bool   `json:"submit"`
}

// Step is one page of a multi-page form: its elements in document order plus
// the primary advance/submit affordance. Terminal means clicking the action
// submits the whole form.
type Step struct {
	Elements []Element `json:"elements"`
	Action   *Action   `json:"action,omitempty"`
	Skipped  []string  `json:"skipped,omitempty"` // reasons for elements left unclassified
}

// Terminal reports whether this step carries the final submit affordance and
// no further next-step affordance.
func (s *Step) Terminal() bool {
	return s.Action != nil && s.Action.Submit
}

// Find returns the element with the given identity key, or nil.
func (s *Step) Find(key string) *Element {
	for i := range s.Elements {
		if s.Elements[i].Key() == key {
			return &s.Elements[i]
		}
	}
	return nil
}
