package service

import (
	"html"
	"regexp"
	"strings"
)

type ITextService interface {
	CleanTitle(input string) string
	SanitizeBrand(input string) string
	RemoveTags(input string) string
	RemoveLinks(input string) string
	ReduceToLength(input string, length int) string
	ClearAndReduce(input string, length int) string
}

type TextService struct{}

func NewTextService() *TextService {
	return &TextService{}
}

var (
	nonLatinRe      = regexp.MustCompile(`[^A-Za-z0-9\s]+`)
	nonLatinBrandRe = regexp.MustCompile(`[^A-Za-z0-9\s\-&]`)
	spacesRe        = regexp.MustCompile(`\s+`)
	tagsRe          = regexp.MustCompile(`<[^>]*>`)
	linksRe         = regexp.MustCompile(`https?://[^\s]+`)
)

// CleanTitle оставляет ТОЛЬКО латинские буквы, цифры и пробелы.
// Китайские символы, эмодзи и прочие спецсимволы удаляются целиком:
// "Nike Air Jordan 1 ❤️【热销】" -> "Nike Air Jordan 1".
func (ts *TextService) CleanTitle(input string) string {
	if input == "" {
		return ""
	}
	cleaned := nonLatinRe.ReplaceAllString(input, "")
	return strings.TrimSpace(spacesRe.ReplaceAllString(cleaned, " "))
}

// SanitizeBrand — как CleanTitle, но дефис и амперсанд сохраняются
// ради брендов вида "G-STAR" и "H&M".
func (ts *TextService) SanitizeBrand(input string) string {
	if input == "" {
		return ""
	}
	cleaned := nonLatinBrandRe.ReplaceAllString(input, "")
	return strings.TrimSpace(spacesRe.ReplaceAllString(cleaned, " "))
}

func (ts *TextService) RemoveTags(input string) string {
	return tagsRe.ReplaceAllString(html.UnescapeString(input), "")
}

func (ts *TextService) RemoveLinks(input string) string {
	return linksRe.ReplaceAllString(input, "")
}

func (ts *TextService) ReduceToLength(input string, length int) string {
	var builder strings.Builder
	words := strings.Split(input, " ")
	totalLength := 0

	for i, word := range words {
		if totalLength+len(word) > length {
			break
		}

		if i > 0 {
			builder.WriteString(" ")
			totalLength++
		}

		builder.WriteString(word)
		totalLength += len(word)
	}

	return builder.String()
}

func (ts *TextService) ClearAndReduce(input string, length int) string {
	cleaned := ts.RemoveTags(input)
	cleaned = ts.RemoveLinks(cleaned)
	return ts.ReduceToLength(cleaned, length)
}
