package domain

import (
	"fmt"
	"strings"
)

// Placeholders substituted into the answer prompt.
const (
	ContextPlaceholder  = "{context}"
	QuestionPlaceholder = "{question}"
)

// AnswerPromptTemplate is the default grounded answering instruction. It ends
// with the cue line that starts the model's completion.
const AnswerPromptTemplate = `### INSTRUCCIONES:
Tu tarea es actuar como un asistente experto en análisis de evidencia científica y responder la pregunta del usuario.
Te basarás ÚNICA Y EXCLUSIVAMENTE en el contexto que te proporciono, el cual consiste en varias fuentes numeradas.

Reglas estrictas:
1.  Sintetiza la información de las fuentes para construir una respuesta coherente y fluida.
2.  **CRÍTICO**: Después de cada oración o afirmación que extraigas de una fuente, DEBES añadir la cita correspondiente. Por ejemplo: "La eficacia del tratamiento fue del 80% [1]."
3.  Si una misma oración combina información de múltiples fuentes, cita todas las relevantes. Por ejemplo: "El estudio incluyó pacientes de Argentina [1] y Chile [2]."
4.  NO inventes información. Si la respuesta no se encuentra en las fuentes proporcionadas, responde exactamente con: "La información solicitada no se encuentra en los documentos disponibles."
5.  No incluyas en tu respuesta los nombres de los documentos, solo los números de cita.

### CONTEXTO:
{context}

### PREGUNTA:
{question}

### RESPUESTA CUMPLIENDO LAS REGLAS:
`

// ValidatePromptTemplate checks that a template carries both placeholders.
func ValidatePromptTemplate(template string) error {
	for _, p := range []string{ContextPlaceholder, QuestionPlaceholder} {
		if !strings.Contains(template, p) {
			return fmt.Errorf("%w: prompt template is missing %s", ErrInvalidInput, p)
		}
	}
	return nil
}

// RenderPrompt substitutes the context and question into template in a
// single pass, so placeholder text inside either value is left as is.
func RenderPrompt(template, context, question string) string {
	return strings.NewReplacer(
		ContextPlaceholder, context,
		QuestionPlaceholder, question,
	).Replace(template)
}
