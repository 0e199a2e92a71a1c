package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"notelets-be/internal/dto"
	"notelets-be/internal/entity"
	"notelets-be/internal/pkg/logger"
	"notelets-be/internal/repository/memory"
	"notelets-be/internal/store"
	"notelets-be/pkg/llm"
	"notelets-be/pkg/llm/factory"
	"notelets-be/pkg/quiz"

	"github.com/google/uuid"
)

const defaultQuestionCount = 5

var ErrQuizNotFound = fmt.Errorf("quiz not found")

type IQuizService interface {
	Start(ctx context.Context, req *dto.StartQuizRequest) (*dto.StartQuizResponse, error)
	Answer(ctx context.Context, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	Clarify(ctx context.Context, req *dto.ClarifyRequest) (*dto.ClarifyResponse, error)
	Advance(ctx context.Context, req *dto.AdvanceQuizRequest) (*dto.AdvanceQuizResponse, error)
}

type quizService struct {
	store        *store.Store
	repo         *memory.QuizRepository
	llmConfig    factory.Config
	defaultModel string
	logger       logger.ILogger
}

func NewQuizService(st *store.Store, repo *memory.QuizRepository, llmConfig factory.Config, defaultModel string, log logger.ILogger) IQuizService {
	return &quizService{
		store:        st,
		repo:         repo,
		llmConfig:    llmConfig,
		defaultModel: defaultModel,
		logger:       log,
	}
}

// Start reads the board's cards, asks the model for questions over them and
// opens a quiz session. The session lives only in the in-memory repository.
func (s *quizService) Start(ctx context.Context, req *dto.StartQuizRequest) (*dto.StartQuizResponse, error) {
	board, err := s.store.Board(ctx, req.BoardId)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, nil // Not found
	}

	cards, err := s.store.CardsByBoard(ctx, req.BoardId)
	if err != nil {
		return nil, err
	}
	material := studyMaterial(board.Title, cards)
	if material == "" {
		return nil, fmt.Errorf("board has no card content to quiz on")
	}

	count := req.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}

	client, err := s.client(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	questions, err := s.generateQuestions(ctx, client, material, count)
	if err != nil {
		return nil, err
	}

	state := quiz.NewState(uuid.NewString(), req.BoardId.String())
	if err := state.Begin(questions); err != nil {
		return nil, err
	}
	s.repo.Save(state)

	current, _ := state.CurrentQuestion()
	return &dto.StartQuizResponse{
		QuizId:   uuid.MustParse(state.ID),
		Phase:    string(state.Phase),
		Question: current.Prompt,
		Index:    state.Current,
		Total:    len(state.Questions),
	}, nil
}

// Answer grades the given answer against the question's reference answer and
// moves the quiz into the feedback phase.
func (s *quizService) Answer(ctx context.Context, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	state, ok := s.repo.Get(req.QuizId.String())
	if !ok {
		return nil, ErrQuizNotFound
	}
	question, ok := state.CurrentQuestion()
	if !ok {
		return nil, quiz.ErrInvalidTransition
	}

	client, err := s.client(ctx, "")
	if err != nil {
		return nil, err
	}

	correct, feedback, err := s.grade(ctx, client, question, req.Answer)
	if err != nil {
		return nil, err
	}

	if err := state.SubmitAnswer(req.Answer, feedback, correct); err != nil {
		return nil, err
	}
	s.repo.Save(state)

	return &dto.SubmitAnswerResponse{
		Phase:    string(state.Phase),
		Feedback: feedback,
		Correct:  correct,
	}, nil
}

// Clarify answers a follow-up question about the just-graded answer. The
// state passes through the clarifying phase and returns to feedback within
// the call, so the client always lands back where it can advance.
func (s *quizService) Clarify(ctx context.Context, req *dto.ClarifyRequest) (*dto.ClarifyResponse, error) {
	state, ok := s.repo.Get(req.QuizId.String())
	if !ok {
		return nil, ErrQuizNotFound
	}
	if err := state.Clarify(); err != nil {
		return nil, err
	}
	s.repo.Save(state)

	question, _ := state.CurrentQuestion()
	client, err := s.client(ctx, "")
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"The quiz question was:\n%s\n\nThe reference answer is:\n%s\n\nThe student asks: %s\n\nAnswer the student's question directly and briefly.",
		question.Prompt, question.Reference, req.Question,
	)
	completion, err := client.CreateChatCompletion(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: prompt}},
		llm.WithSystem("You are a patient tutor clarifying quiz feedback."),
	)
	if err != nil {
		// Leave the quiz answerable even when the model call fails.
		state.EndClarification()
		s.repo.Save(state)
		return nil, err
	}

	if err := state.EndClarification(); err != nil {
		return nil, err
	}
	s.repo.Save(state)

	return &dto.ClarifyResponse{
		Phase:  string(state.Phase),
		Answer: completion.Content,
	}, nil
}

// Advance moves to the next question, or into the summary once the last
// question is done. Reaching the summary deletes the session after scoring.
func (s *quizService) Advance(ctx context.Context, req *dto.AdvanceQuizRequest) (*dto.AdvanceQuizResponse, error) {
	state, ok := s.repo.Get(req.QuizId.String())
	if !ok {
		return nil, ErrQuizNotFound
	}
	if err := state.Advance(); err != nil {
		return nil, err
	}

	if state.Phase != quiz.PhaseSummary {
		question, _ := state.CurrentQuestion()
		s.repo.Save(state)
		return &dto.AdvanceQuizResponse{
			Phase:    string(state.Phase),
			Question: question.Prompt,
			Index:    state.Current,
			Total:    len(state.Questions),
		}, nil
	}

	correct, total, _ := state.Score()
	summary := s.summarize(ctx, state)
	s.repo.Delete(state.ID)

	return &dto.AdvanceQuizResponse{
		Phase:   string(state.Phase),
		Index:   state.Current,
		Total:   total,
		Summary: summary,
		Score:   correct,
	}, nil
}

func (s *quizService) client(ctx context.Context, model string) (llm.Client, error) {
	if model == "" {
		model = s.defaultModel
	}
	return factory.NewClient(ctx, s.llmConfig, model)
}

func (s *quizService) generateQuestions(ctx context.Context, client llm.Client, material string, count int) ([]quiz.Question, error) {
	prompt := fmt.Sprintf(
		"Write %d quiz questions over the following study material. Respond with ONLY a JSON array of objects with keys \"question\" and \"answer\".\n\n%s",
		count, material,
	)
	completion, err := client.CreateChatCompletion(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: prompt}},
		llm.WithSystem("You write quiz questions. Output strict JSON with no commentary."),
		llm.WithMaxTokens(2048),
	)
	if err != nil {
		return nil, err
	}

	var parsed []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(completion.Content)), &parsed); err != nil {
		return nil, fmt.Errorf("model returned unparseable questions: %w", err)
	}

	questions := make([]quiz.Question, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.Question) == "" {
			continue
		}
		questions = append(questions, quiz.Question{Prompt: p.Question, Reference: p.Answer})
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no usable questions")
	}
	return questions, nil
}

func (s *quizService) grade(ctx context.Context, client llm.Client, question quiz.Question, answer string) (bool, string, error) {
	prompt := fmt.Sprintf(
		"Question: %s\nReference answer: %s\nStudent answer: %s\n\nRespond with ONLY a JSON object: {\"correct\": true|false, \"feedback\": \"one or two sentences\"}.",
		question.Prompt, question.Reference, answer,
	)
	completion, err := client.CreateChatCompletion(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: prompt}},
		llm.WithSystem("You grade quiz answers. Output strict JSON with no commentary."),
	)
	if err != nil {
		return false, "", err
	}

	var parsed struct {
		Correct  bool   `json:"correct"`
		Feedback string `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(completion.Content)), &parsed); err != nil {
		return false, "", fmt.Errorf("model returned unparseable grade: %w", err)
	}
	return parsed.Correct, parsed.Feedback, nil
}

// summarize is best-effort: a failed model call degrades to a plain score
// line rather than failing the whole quiz.
func (s *quizService) summarize(ctx context.Context, state *quiz.State) string {
	correct, total, _ := state.Score()
	fallback := fmt.Sprintf("You answered %d of %d questions correctly.", correct, total)

	var b strings.Builder
	for _, r := range state.Results {
		fmt.Fprintf(&b, "Q: %s\nA: %s\nCorrect: %t\n\n", r.Question, r.Given, r.Correct)
	}

	client, err := s.client(ctx, "")
	if err != nil {
		return fallback
	}
	completion, err := client.CreateChatCompletion(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: "Summarize this quiz attempt in a short encouraging paragraph, naming topics to review:\n\n" + b.String()}},
		llm.WithSystem("You summarize quiz results for a student."),
	)
	if err != nil {
		s.logger.Warn("QuizService", "Summary generation failed", map[string]interface{}{"error": err.Error()})
		return fallback
	}
	return completion.Content
}

func studyMaterial(boardTitle string, cards []*entity.Card) string {
	var b strings.Builder
	for _, card := range cards {
		if card.Kind != entity.CardKindRichtext || strings.TrimSpace(card.Content) == "" {
			continue
		}
		if card.Title != "" {
			fmt.Fprintf(&b, "## %s\n", card.Title)
		}
		b.WriteString(card.Content)
		b.WriteString("\n\n")
	}
	if b.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("# %s\n\n%s", boardTitle, b.String())
}

// stripCodeFence unwraps ```json fences that models wrap JSON output in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
