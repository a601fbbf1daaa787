package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogsave/internal/telemetry/tracing"
	"github.com/2beens/blogsave/pkg"
)

const maxFormMemory = 1 << 20

var ErrPromptEmpty = errors.New("prompt empty")

type generateBlogResponse struct {
	BlogContent string `json:"blog_content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type dashboardPage struct {
	Records []*Record
}

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=blog_test

type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type recordsRepo interface {
	SaveRecord(ctx context.Context, title, content string)
	ListRecords(ctx context.Context) (map[string]*Record, error)
}

type Handler struct {
	generator textGenerator
	repo      recordsRepo
}

func NewHandler(
	generator textGenerator,
	repo recordsRepo,
) *Handler {
	return &Handler{
		generator: generator,
		repo:      repo,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/", handler.handleIndex).Methods("GET").Name("index")
	router.HandleFunc("/generate_blog", handler.handleGenerateBlog).Methods("POST").Name("generate-blog")
	router.HandleFunc("/dashboard", handler.handleDashboard).Methods("GET").Name("dashboard")
	router.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
}

func (handler *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	handler.renderPage(w, "index.html", nil)
}

func (handler *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "ok")
}

func (handler *Handler) handleGenerateBlog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.generate")
	defer span.End()

	prompt, err := promptFromRequest(r)
	if err != nil {
		if errors.Is(err, ErrPromptEmpty) {
			http.Error(w, "error, prompt empty", http.StatusBadRequest)
			return
		}
		log.Errorf("generate blog, %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	text, err := handler.generator.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		log.Errorf("generate blog failed: %s", err)
		http.Error(w, "generate blog failed", http.StatusInternalServerError)
		return
	}

	// write outcome does not change the response
	handler.repo.SaveRecord(ctx, prompt, text)

	if err := pkg.WriteJSONResponse(w, generateBlogResponse{BlogContent: text}, http.StatusOK); err != nil {
		log.Errorf("generate blog, write response: %s", err)
		http.Error(w, "generate blog failed", http.StatusInternalServerError)
	}
}

func (handler *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.dashboard")
	defer span.End()

	records, err := handler.repo.ListRecords(ctx)
	if err != nil {
		span.RecordError(err)
		log.Errorf("error fetching blog data: %s", err)
		if err := pkg.WriteJSONResponse(
			w,
			errorResponse{Error: "Error fetching blog data"},
			http.StatusInternalServerError,
		); err != nil {
			log.Errorf("dashboard, write error response: %s", err)
		}
		return
	}

	log.Debugf("fetched %d blog records", len(records))
	span.SetAttributes(attribute.Int("records.count", len(records)))

	handler.renderPage(w, "dashboard.html", dashboardPage{
		Records: newestFirst(records),
	})
}

func (handler *Handler) renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("render page %s: %s", name, err)
		http.Error(w, "render page failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), http.StatusOK)
}

func promptFromRequest(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", ErrPromptEmpty
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", fmt.Errorf("parse form: %w", err)
	}

	prompt := r.PostForm.Get("prompt")
	if strings.TrimSpace(prompt) == "" {
		return "", ErrPromptEmpty
	}

	return prompt, nil
}

// newestFirst orders records for display only, ties broken by ID.
func newestFirst(records map[string]*Record) []*Record {
	sorted := make([]*Record, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		sorted = append(sorted, record)
	}
	sort.Slice(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Timestamp.Time, sorted[j].Timestamp.Time
		if ti.Equal(tj) {
			return sorted[i].ID < sorted[j].ID
		}
		return ti.After(tj)
	})
	return sorted
}
