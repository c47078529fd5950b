// Package translate wraps a machine translation service. Callers never see
// its failures directly: Attempt yields a Result whose Or method applies the
// one fallback rule, which is to keep the original text.
package translate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrUnavailable wraps every translation failure.
var ErrUnavailable = errors.New("translation unavailable")

// Translator translates text between two languages.
type Translator interface {
	Translate(ctx context.Context, text string, source, target language.Tag) (string, error)
}

// Result is the outcome of one translation attempt.
type Result struct {
	Text string
	Err  error
}

// OK reports whether the attempt produced a translation.
func (r Result) OK() bool { return r.Err == nil }

// Or returns the translation, or original if the attempt failed.
func (r Result) Or(original string) string {
	if r.Err != nil {
		return original
	}
	return r.Text
}

// Attempt runs one translation and captures any failure, including a panic
// inside the translator, as an ErrUnavailable result.
func Attempt(ctx context.Context, t Translator, text string, source, target language.Tag) (res Result) {
	if t == nil || source == target || text == "" {
		return Result{Text: text}
	}
	defer func() {
		if p := recover(); p != nil {
			res = Result{Err: fmt.Errorf("%w: translator panicked: %v", ErrUnavailable, p)}
		}
	}()

	out, err := t.Translate(ctx, text, source, target)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return Result{Err: err}
	}
	if out == "" {
		return Result{Err: fmt.Errorf("%w: empty translation", ErrUnavailable)}
	}
	return Result{Text: out}
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text string, source, target language.Tag) (string, error)

func (f Func) Translate(ctx context.Context, text string, source, target language.Tag) (string, error) {
	return f(ctx, text, source, target)
}
