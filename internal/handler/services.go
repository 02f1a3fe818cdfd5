package handler

import (
	"net/http"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/service"

	"github.com/gin-gonic/gin"
)

type ServicesHandler struct{ svc service.ServiceService }

func NewServicesHandler(svc service.ServiceService) *ServicesHandler {
	return &ServicesHandler{svc: svc}
}

// List godoc
// @Summary  Listar serviços
// @Tags     services
// @Produce  json
// @Security BearerAuth
// @Param    page     query int    false "Página"
// @Param    pageSize query int    false "Itens por página"
// @Param    search   query string false "ART, descrição ou empresa"
// @Param    status   query string false "scheduled | in_progress | completed | canceled | all"
// @Success  200 {object} dto.ServiceListResponse
// @Router   /services [get]
func (h *ServicesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// All godoc
// @Summary  Todos os serviços com a empresa, mais recentes primeiro
// @Tags     services
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} dto.ServiceResponse
// @Router   /services/all [get]
func (h *ServicesHandler) All(c *gin.Context) {
	resp, err := h.svc.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recent godoc
// @Summary  Serviços mais recentes
// @Tags     services
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} dto.ServiceResponse
// @Router   /services/recent [get]
func (h *ServicesHandler) Recent(c *gin.Context) {
	resp, err := h.svc.Recent(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpcomingDeadlines godoc
// @Summary  Serviços com vencimento nos próximos 30 dias
// @Tags     services
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} dto.ServiceResponse
// @Router   /services/upcoming-deadlines [get]
func (h *ServicesHandler) UpcomingDeadlines(c *gin.Context) {
	resp, err := h.svc.UpcomingDeadlines(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServicesHandler) Get(c *gin.Context) {
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

func (h *ServicesHandler) Create(c *gin.Context) {
	var req dto.CreateServiceRequest
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

func (h *ServicesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateServiceRequest
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

func (h *ServicesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Serviço excluído com sucesso"})
}
