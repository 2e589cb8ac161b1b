package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerPromptTemplate(t *testing.T) {
	assert.NoError(t, ValidatePromptTemplate(AnswerPromptTemplate))
	assert.True(t, strings.HasPrefix(AnswerPromptTemplate, "### INSTRUCCIONES:\n"))
	assert.True(t, strings.HasSuffix(AnswerPromptTemplate, "### RESPUESTA CUMPLIENDO LAS REGLAS:\n"))
	assert.Contains(t, AnswerPromptTemplate, `responde exactamente con: "`+FallbackAnswer+`"`)
	assert.Equal(t, 1, strings.Count(AnswerPromptTemplate, ContextPlaceholder))
	assert.Equal(t, 1, strings.Count(AnswerPromptTemplate, QuestionPlaceholder))
}

func TestValidatePromptTemplate(t *testing.T) {
	assert.ErrorIs(t, ValidatePromptTemplate("only {context}"), ErrInvalidInput)
	assert.ErrorIs(t, ValidatePromptTemplate("only {question}"), ErrInvalidInput)
	assert.NoError(t, ValidatePromptTemplate("{context} / {question}"))
}

func TestRenderPrompt(t *testing.T) {
	t.Run("substitutes both placeholders", func(t *testing.T) {
		got := RenderPrompt("C: {context}\nQ: {question}", "ctx", "q?")
		assert.Equal(t, "C: ctx\nQ: q?", got)
	})

	t.Run("does not expand placeholders inside values", func(t *testing.T) {
		got := RenderPrompt("C: {context}\nQ: {question}", "texto con {question}", "q")
		assert.Equal(t, "C: texto con {question}\nQ: q", got)
	})

	t.Run("default template keeps its structure", func(t *testing.T) {
		got := RenderPrompt(AnswerPromptTemplate, "### Fuente [1]\n", "¿Qué?")
		assert.Contains(t, got, "### CONTEXTO:\n### Fuente [1]\n\n\n### PREGUNTA:\n¿Qué?\n")
		assert.NotContains(t, got, ContextPlaceholder)
	})
}
