package web

import (
	"net/http"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/UB-Mannheim/maidisco/internal/relay"
	"github.com/UB-Mannheim/maidisco/library/catalog"
)

// searchForm is the HTML form. Years are optional four digit numbers.
type searchForm struct {
	Query        string `form:"nl"`
	Language     string `form:"language" binding:"max=64"`
	MaterialType string `form:"material_type" binding:"max=64"`
	YearFrom     string `form:"year_from" binding:"omitempty,numeric,len=4"`
	YearTo       string `form:"year_to" binding:"omitempty,numeric,len=4"`
}

func (f *searchForm) trim() {
	f.Query = strings.TrimSpace(f.Query)
	f.Language = strings.TrimSpace(f.Language)
	f.MaterialType = strings.TrimSpace(f.MaterialType)
	f.YearFrom = strings.TrimSpace(f.YearFrom)
	f.YearTo = strings.TrimSpace(f.YearTo)
}

func (f searchForm) overrides() catalog.Filters {
	return catalog.Filters{
		Language:     f.Language,
		MaterialType: f.MaterialType,
		YearFrom:     f.YearFrom,
		YearTo:       f.YearTo,
	}
}

// searchAPIRequest is the body of POST /api/search.
type searchAPIRequest struct {
	Query   string          `json:"query" binding:"required"`
	Filters catalog.Filters `json:"filters"`
}

func (s *Server) handleIndex(ctx *gin.Context) {
	s.renderPage(ctx, http.StatusOK, newPageData(s.searcher.Backend(), searchForm{}))
}

func (s *Server) handleSearchForm(ctx *gin.Context) {
	var form searchForm
	bindErr := ctx.ShouldBindWith(&form, binding.Form)
	form.trim()

	if form.Query == "" {
		ctx.Redirect(http.StatusSeeOther, "/")
		return
	}

	data := newPageData(s.searcher.Backend(), form)
	if bindErr != nil {
		data.FormError = formErrorMessage(bindErr)
		s.renderPage(ctx, http.StatusBadRequest, data)
		return
	}

	out, err := s.searcher.Search(ctx, relay.SearchRequest{
		Query:     form.Query,
		Overrides: form.overrides(),
	})
	if err != nil {
		data.FormError = err.Error()
		s.renderPage(ctx, http.StatusBadRequest, data)
		return
	}

	data.setOutcome(out)
	s.renderPage(ctx, http.StatusOK, data)
}

func (s *Server) handleSearchAPI(ctx *gin.Context) {
	var req searchAPIRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": formErrorMessage(err)})
		return
	}

	out, err := s.searcher.Search(ctx, relay.SearchRequest{
		Query:     req.Query,
		Overrides: req.Filters,
	})
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, out)
}

func (s *Server) renderPage(ctx *gin.Context, status int, data pageData) {
	ctx.Status(status)
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(ctx.Writer, data); err != nil {
		gmw.GetLogger(ctx).Error("render page", zap.Error(err))
	}
}

// formErrorMessage turns validator errors into one readable line.
func formErrorMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request: " + err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, strings.ToLower(fe.Field())+" is required")
		case "numeric", "len":
			msgs = append(msgs, strings.ToLower(fe.Field())+" must be a four digit year")
		default:
			msgs = append(msgs, strings.ToLower(fe.Field())+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}
