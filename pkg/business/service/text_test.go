package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	ts := NewTextService()

	tests := []struct {
		input string
		want  string
	}{
		{input: "Nike Air Jordan 1 ❤️【热销】", want: "Nike Air Jordan 1"},
		{input: "  Dunk   Low  ", want: "Dunk Low"},
		{input: "【爆款】New Balance 530 复古", want: "New Balance 530"},
		{input: "只有中文", want: ""},
		{input: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ts.CleanTitle(tt.input), "input: %q", tt.input)
	}
}

func TestSanitizeBrand(t *testing.T) {
	ts := NewTextService()

	// дефис и амперсанд — часть названий брендов
	assert.Equal(t, "G-STAR", ts.SanitizeBrand("G-STAR®"))
	assert.Equal(t, "H&M", ts.SanitizeBrand("H&M"))
	assert.Equal(t, "Nike", ts.SanitizeBrand("Nike 耐克"))
}

func TestClearAndReduce(t *testing.T) {
	ts := NewTextService()

	input := "<p>Хорошие кроссовки</p> подробнее на https://example.com/item тут"
	got := ts.ClearAndReduce(input, 40)
	assert.NotContains(t, got, "<p>")
	assert.NotContains(t, got, "https://")
}
