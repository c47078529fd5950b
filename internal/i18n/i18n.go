// Package i18n defines the languages the UI can be shown in and the fixed
// interface text for each.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is one of the supported UI languages. The set is closed.
type Language int

const (
	English Language = iota
	Hindi
)

// Strings is the interface text for one language.
type Strings struct {
	Title              string
	Subtitle           string
	LanguageLabel      string
	AboutHeader        string
	AboutText          string
	InstructionsHeader string
	InstructionsText   string
	UploadHeader       string
	UploadPrompt       string
	UploadInfo         string
	AnalyzeButton      string
	Analyzing          string
	AnalysisComplete   string
	DetectedCondition  string
	Confidence         string
	DiseaseInfoHeader  string
	SymptomsHeader     string
	TreatmentHeader    string
	FooterText         string
	Disclaimer         string
	InvalidImage       string
	UploadTooLarge     string
	NoRecord           string
}

var tags = []language.Tag{language.English, language.Hindi}

var matcher = language.NewMatcher(tags)

// All lists every supported language in display order.
func All() []Language { return []Language{English, Hindi} }

// Tag returns the BCP 47 tag for l.
func (l Language) Tag() language.Tag {
	if l == Hindi {
		return language.Hindi
	}
	return language.English
}

// Code returns the two-letter code, e.g. "hi".
func (l Language) Code() string {
	base, _ := l.Tag().Base()
	return base.String()
}

// Name is the label shown in the language selector.
func (l Language) Name() string {
	if l == Hindi {
		return "Hindi / हिंदी"
	}
	return "English"
}

func (l Language) String() string {
	if l == Hindi {
		return "Hindi"
	}
	return "English"
}

// Strings returns the interface text for l.
func (l Language) Strings() Strings {
	if s, ok := tables[l]; ok {
		return s
	}
	return tables[English]
}

// Parse accepts a language code or English name, case-insensitively.
func Parse(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "eng", "english":
		return English, true
	case "hi", "hin", "hindi", "हिंदी":
		return Hindi, true
	}
	return English, false
}

// Match picks the best supported language for an Accept-Language header.
func Match(acceptLanguage string) Language {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return English
	}
	return All()[idx]
}

// Resolve applies the explicit choice first, then Accept-Language, then
// English.
func Resolve(explicit, acceptLanguage string) Language {
	if l, ok := Parse(explicit); ok {
		return l
	}
	return Match(acceptLanguage)
}
