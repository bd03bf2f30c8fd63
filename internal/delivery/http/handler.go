package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certwatch/backend/internal/domain"
	"github.com/certwatch/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog   *usecase.KeywordCatalog
	matcher   *usecase.KeywordMatcher
	audit     *usecase.AuditService
	pending   *usecase.PendingJudgmentService
	ingest    *usecase.IngestService
	blacklist domain.BlacklistRepository
	module    string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *usecase.KeywordCatalog,
	matcher *usecase.KeywordMatcher,
	audit *usecase.AuditService,
	pending *usecase.PendingJudgmentService,
	ingest *usecase.IngestService,
	blacklist domain.BlacklistRepository,
	moduleType string,
) *Handler {
	if moduleType == "" {
		moduleType = domain.ModuleDeviceData
	}
	return &Handler{
		catalog:   catalog,
		matcher:   matcher,
		audit:     audit,
		pending:   pending,
		ingest:    ingest,
		blacklist: blacklist,
		module:    moduleType,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "certwatch-backend",
		"version": "1.0.0",
	})
}

// ListKeywordCategories returns category names and per-category counts
func (h *Handler) ListKeywordCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.catalog.Categories(),
		"counts":     h.catalog.Counts(),
	})
}

// GetKeywords returns the keyword list for one category ("all" included)
func (h *Handler) GetKeywords(c *gin.Context) {
	category := c.Param("category")
	keywords := h.catalog.Keywords(category)
	if keywords == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown keyword category: " + category})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"count":    len(keywords),
		"keywords": keywords,
	})
}

// SearchKeywords finds keywords containing the query term
func (h *Handler) SearchKeywords(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	hits := h.catalog.Search(term)
	c.JSON(http.StatusOK, gin.H{
		"query":    term,
		"count":    len(hits),
		"keywords": hits,
	})
}

// matchRequest is the relevance probe payload. Either an explicit keyword
// list or a catalog category must be given.
type matchRequest struct {
	Text     string               `json:"text" binding:"required"`
	Keywords []string             `json:"keywords"`
	Category string               `json:"category"`
	Mode     domain.MatchMode     `json:"mode"`
	Strategy domain.MatchStrategy `json:"strategy"`
}

// MatchProbe evaluates one text against a keyword set and reports the verdict
func (h *Handler) MatchProbe(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	keywords := req.Keywords
	if len(keywords) == 0 && req.Category != "" {
		keywords = h.catalog.Keywords(req.Category)
		if keywords == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown keyword category: " + req.Category})
			return
		}
	}
	if len(keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either keywords or category is required"})
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.MatchModeContains
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = domain.MatchStrategyAny
	}

	result := h.matcher.Match(req.Text, keywords, mode, strategy)
	c.JSON(http.StatusOK, result)
}

// tagRequest carries raw crawl records for the keyword first pass
type tagRequest struct {
	Records []domain.CrawlRecord `json:"records" binding:"required"`
}

// TagRecords runs the keyword first pass over submitted crawl records
func (h *Handler) TagRecords(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	tagged := make([]domain.TaggedRecord, 0, len(req.Records))
	relevant := 0
	for _, rec := range req.Records {
		t := h.ingest.Tag(rec)
		if t.Relevant {
			relevant++
		}
		tagged = append(tagged, t)
	}
	c.JSON(http.StatusOK, gin.H{
		"total":         len(tagged),
		"relevantCount": relevant,
		"tagged":        tagged,
	})
}

// auditRequest carries one batch of same-type records to judge
type auditRequest struct {
	EntityType string          `json:"entityType" binding:"required"`
	Records    json.RawMessage `json:"records" binding:"required"`
}

// RunAudit judges a batch of records and returns the audit report
func (h *Handler) RunAudit(c *gin.Context) {
	var req auditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	records, err := decodeRecords(req.EntityType, req.Records)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records must not be empty"})
		return
	}

	result := h.audit.RunAudit(c.Request.Context(), records)
	c.JSON(http.StatusOK, result)
}

// decodeRecords unmarshals a raw JSON array into the concrete record type for
// the entity tag
func decodeRecords(entityType string, raw json.RawMessage) ([]domain.Record, error) {
	wrap := func(n int, at func(i int) domain.Record) []domain.Record {
		out := make([]domain.Record, n)
		for i := range out {
			out[i] = at(i)
		}
		return out
	}

	switch entityType {
	case domain.EntityFiling:
		var rows []*domain.DeviceFiling
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		return wrap(len(rows), func(i int) domain.Record { return rows[i] }), nil
	case domain.EntityRegistration:
		var rows []*domain.DeviceRegistration
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		return wrap(len(rows), func(i int) domain.Record { return rows[i] }), nil
	case domain.EntityRecall:
		var rows []*domain.DeviceRecall
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		return wrap(len(rows), func(i int) domain.Record { return rows[i] }), nil
	case domain.EntityEvent:
		var rows []*domain.DeviceEvent
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		return wrap(len(rows), func(i int) domain.Record { return rows[i] }), nil
	case domain.EntityCustoms:
		var rows []*domain.CustomsCase
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		return wrap(len(rows), func(i int) domain.Record { return rows[i] }), nil
	case domain.EntityGuidance:
		var rows []*domain.GuidanceDocument
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		return wrap(len(rows), func(i int) domain.Record { return rows[i] }), nil
	default:
		return nil, domain.ErrUnknownEntityType
	}
}

// ListPendingJudgments returns judgments still awaiting review
func (h *Handler) ListPendingJudgments(c *gin.Context) {
	moduleType := c.DefaultQuery("module_type", h.module)
	rows, err := h.pending.ListPending(c.Request.Context(), moduleType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending judgments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"moduleType": moduleType,
		"count":      len(rows),
		"judgments":  rows,
	})
}

// PendingStats returns pending counts per entity type
func (h *Handler) PendingStats(c *gin.Context) {
	moduleType := c.DefaultQuery("module_type", h.module)
	counts, err := h.pending.PendingCountByEntityType(c.Request.Context(), moduleType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count pending judgments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"moduleType": moduleType,
		"counts":     counts,
	})
}

// GetJudgment returns one judgment by id
func (h *Handler) GetJudgment(c *gin.Context) {
	id, ok := judgmentID(c)
	if !ok {
		return
	}
	judgment, err := h.pending.Get(c.Request.Context(), id)
	if err != nil {
		respondJudgmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, judgment)
}

// reviewRequest names the reviewer acting on a judgment
type reviewRequest struct {
	Operator string `json:"operator"`
}

// ConfirmJudgment accepts one pending judgment
func (h *Handler) ConfirmJudgment(c *gin.Context) {
	id, ok := judgmentID(c)
	if !ok {
		return
	}
	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.pending.Confirm(c.Request.Context(), id, req.Operator); err != nil {
		respondJudgmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": domain.StatusConfirmed})
}

// RejectJudgment declines one pending judgment
func (h *Handler) RejectJudgment(c *gin.Context) {
	id, ok := judgmentID(c)
	if !ok {
		return
	}
	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.pending.Reject(c.Request.Context(), id, req.Operator); err != nil {
		respondJudgmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": domain.StatusRejected})
}

// batchConfirmRequest carries many judgment ids to confirm at once
type batchConfirmRequest struct {
	IDs      []uint `json:"ids" binding:"required"`
	Operator string `json:"operator"`
}

// BatchConfirmJudgments confirms many judgments; conflicts are reported, not fatal
func (h *Handler) BatchConfirmJudgments(c *gin.Context) {
	var req batchConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids must not be empty"})
		return
	}
	result := h.pending.BatchConfirm(c.Request.Context(), req.IDs, req.Operator)
	c.JSON(http.StatusOK, result)
}

// CleanupJudgments sweeps expired pending judgments on demand
func (h *Handler) CleanupJudgments(c *gin.Context) {
	count, err := h.pending.CleanupExpired(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expiredCount": count})
}

// SuggestedBlacklistTerms aggregates blacklist terms proposed by pending judgments
func (h *Handler) SuggestedBlacklistTerms(c *gin.Context) {
	moduleType := c.DefaultQuery("module_type", h.module)
	terms, err := h.pending.SuggestedBlacklistTerms(c.Request.Context(), moduleType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate suggestions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"moduleType": moduleType,
		"count":      len(terms),
		"terms":      terms,
	})
}

// ListBlacklist returns the current blacklist terms
func (h *Handler) ListBlacklist(c *gin.Context) {
	terms, err := h.blacklist.Terms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load blacklist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(terms),
		"terms": terms,
	})
}

// blacklistRequest adds one manufacturer term to the blacklist
type blacklistRequest struct {
	Term   string `json:"term" binding:"required"`
	Source string `json:"source"`
}

// AddBlacklistTerm inserts a blacklist term; duplicates are silently ignored
func (h *Handler) AddBlacklistTerm(c *gin.Context) {
	var req blacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Source == "" {
		req.Source = "MANUAL"
	}
	if err := h.blacklist.Add(c.Request.Context(), req.Term, req.Source); err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "term must not be empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add term"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"term": req.Term})
}

// judgmentID parses the :id path parameter; on failure it writes the 400 itself
func judgmentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid judgment id"})
		return 0, false
	}
	return uint(id), true
}

// respondJudgmentError maps judgment lifecycle errors onto status codes
func respondJudgmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrJudgmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "judgment not found"})
	case errors.Is(err, domain.ErrJudgmentNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "judgment is no longer pending"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
