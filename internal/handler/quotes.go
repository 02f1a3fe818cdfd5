package handler

import (
	"net/http"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/service"

	"github.com/gin-gonic/gin"
)

type QuotesHandler struct{ svc service.QuoteService }

func NewQuotesHandler(svc service.QuoteService) *QuotesHandler { return &QuotesHandler{svc: svc} }

// List godoc
// @Summary      Listar orçamentos
// @Description  Lista paginada, mais recentes primeiro. Busca por número, título ou nome da empresa.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        page     query int    false "Página (padrão 1)"
// @Param        pageSize query int    false "Itens por página (padrão 10, máx. 100)"
// @Param        search   query string false "Texto de busca"
// @Param        status   query string false "pending | approved | rejected | all"
// @Success      200 {object} dto.QuoteListResponse
// @Failure      500 {object} apierror.APIError
// @Router       /quotes [get]
func (h *QuotesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Obter orçamento
// @Description  Retorna o orçamento com empresa e itens (cada item com o serviço vinculado, se houver).
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID do orçamento"
// @Success      200 {object} dto.QuoteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /quotes/{id} [get]
func (h *QuotesHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Criar orçamento
// @Description  Cria o orçamento e seus itens numa única transação. O número é gerado pelo servidor.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CreateQuoteRequest true "Orçamento e itens"
// @Success      201  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.ValidationError
// @Failure      500  {object} apierror.APIError
// @Router       /quotes [post]
func (h *QuotesHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Atualizar orçamento
// @Description  Atualiza campos do orçamento. Se "items" for enviado (mesmo vazio), substitui todos os itens.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                 true "UUID do orçamento"
// @Param        body body     dto.UpdateQuoteRequest true "Alterações"
// @Success      200  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.ValidationError
// @Failure      404  {object} apierror.APIError
// @Router       /quotes/{id} [put]
func (h *QuotesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateQuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Excluir orçamento
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID do orçamento"
// @Success      200 {object} dto.DeleteQuoteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /quotes/{id} [delete]
func (h *QuotesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
