// Package answer builds grounded prompts from retrieved policy chunks and
// turns model completions into user-facing answers with citations.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/policyd/internal/llm"
	"github.com/fyrsmithlabs/policyd/internal/retriever"
)

// Language selects the response language for one question.
type Language string

const (
	Swedish Language = "Swedish"
	English Language = "English"
)

// ParseLanguage maps user input to a supported language. Swedish is the
// default for empty input.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "swedish", "sv", "svenska":
		return Swedish, nil
	case "english", "en":
		return English, nil
	}
	return "", fmt.Errorf("unsupported language %q (want Swedish or English)", s)
}

// historyWindow is the number of prior turns carried into the model call.
const historyWindow = 4

// Turn is one prior exchange in the conversation.
type Turn struct {
	Role    string
	Content string
}

// Response is the outcome of one question.
type Response struct {
	Text string

	// Sources is exactly the filtered set of chunks fed to the model,
	// empty when the answer is a fallback or error message.
	Sources []retriever.Document
}

// Retriever fetches relevance-filtered chunks for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) (retriever.Result, error)
}

// Synthesizer answers questions about the ingested policy corpus.
type Synthesizer struct {
	retriever Retriever
	client    llm.Client
	logger    *zap.Logger
}

// New creates a Synthesizer.
func New(r Retriever, client llm.Client, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{retriever: r, client: client, logger: logger}
}

const (
	noDocumentsSwedish = "Jag har inga relevanta policydokument för att svara på denna fråga. Vänligen ladda upp HR-policydokument för att komma igång."
	noDocumentsEnglish = "I don't have any relevant policy documents to answer this question. Please upload HR policy documents to get started."

	noRelevantSwedish = "Jag kunde inte hitta relevant information i de uppladdade policyerna för att svara på denna fråga. Frågan kan ligga utanför de tillgängliga dokumentens omfattning."
	noRelevantEnglish = "I couldn't find relevant information in the uploaded policies to answer this question. The question might be outside the scope of the available documents."

	systemSwedish = "Du är en svensk HR-assistent. Svara alltid på svenska, oavsett vilket språk frågan ställs på."
	systemEnglish = "You are an HR assistant. Always respond in English, regardless of the question's language."
)

// Answer runs the retrieve-then-generate flow for one question. Retrieval
// failures are returned as errors; model invocation failures are absorbed
// into the answer text with an empty source list.
func (s *Synthesizer) Answer(ctx context.Context, question string, history []Turn, lang Language) (Response, error) {
	result, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return Response{}, err
	}

	if result.TotalMatches == 0 {
		return Response{Text: fallback(lang, noDocumentsSwedish, noDocumentsEnglish)}, nil
	}
	if len(result.Documents) == 0 {
		return Response{Text: fallback(lang, noRelevantSwedish, noRelevantEnglish)}, nil
	}

	prompt := buildPrompt(question, buildContext(result.Documents, lang), lang)

	messages := make([]llm.Message, 0, historyWindow+1)
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, turn := range history[start:] {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompt})

	text, err := s.client.Complete(ctx, llm.Request{
		System:   fallback(lang, systemSwedish, systemEnglish),
		Messages: messages,
	})
	if err != nil {
		s.logger.Warn("model invocation failed", zap.Error(err))
		return Response{Text: fmt.Sprintf("Error generating response: %v", err)}, nil
	}

	s.logger.Debug("answer generated",
		zap.Int("sources", len(result.Documents)),
		zap.String("language", string(lang)),
	)

	return Response{Text: text, Sources: result.Documents}, nil
}

func fallback(lang Language, sv, en string) string {
	if lang == English {
		return en
	}
	return sv
}

// buildContext formats the retrieved chunks as numbered, source-labeled
// blocks, best match first.
func buildContext(docs []retriever.Document, lang Language) string {
	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		source := doc.Source
		if source == "" {
			source = fallback(lang, "Okänd", "Unknown")
		}

		location := fallback(lang, "Källa: ", "Source: ") + source
		switch {
		case doc.Page != "":
			location += fallback(lang, ", Sida ", ", Page ") + doc.Page
		case doc.Paragraph != "":
			location += fallback(lang, ", Avsnitt ", ", Section ") + doc.Paragraph
		}

		label := fallback(lang, "Dokument", "Document")
		blocks = append(blocks, fmt.Sprintf("[%s %d] (%s)\n%s", label, i+1, location, doc.Text))
	}
	return strings.Join(blocks, "\n\n")
}

func buildPrompt(question, context string, lang Language) string {
	if lang == English {
		return fmt.Sprintf(`You are a helpful HR assistant. Answer the employee's question based on the provided HR policy documents.

POLICY DOCUMENTS:
%s

EMPLOYEE'S QUESTION: %s

INSTRUCTIONS:
1. Answer ONLY based on the information in the provided policy documents
2. If the documents don't contain the needed information, clearly state: "I don't have information about this in the available HR policies"
3. Be specific and reference which document/page you're referring to
4. Use a friendly, professional tone
5. If policies are unclear or can be interpreted in multiple ways, mention this
6. Keep answers concise but complete
7. Don't make up or assume information not in the documents
8. Always respond in ENGLISH

ANSWER:`, context, question)
	}

	return fmt.Sprintf(`Du är en hjälpsam HR-assistent. Svara på medarbetarens fråga baserat på de tillhandahållna HR-policydokumenten.

POLICYDOKUMENT:
%s

MEDARBETARENS FRÅGA: %s

INSTRUKTIONER:
1. Svara ENDAST baserat på informationen i de tillhandahållna policydokumenten
2. Om dokumenten inte innehåller den information som behövs, säg tydligt: "Jag har ingen information om detta i de tillgängliga HR-policyerna"
3. Var specifik och referera till vilket dokument/sida du hänvisar till
4. Använd en vänlig, professionell ton
5. Om policyer är oklara eller kan tolkas på flera sätt, nämn detta
6. Håll svaren koncisa men fullständiga
7. Hitta inte på eller anta information som inte finns i dokumenten
8. Svara alltid på SVENSKA

SVAR:`, context, question)
}
