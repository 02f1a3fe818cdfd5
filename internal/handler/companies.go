package handler

import (
	"net/http"

	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/service"

	"github.com/gin-gonic/gin"
)

type CompaniesHandler struct{ svc service.CompanyService }

func NewCompaniesHandler(svc service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{svc: svc}
}

// List godoc
// @Summary  Listar empresas
// @Tags     companies
// @Produce  json
// @Security BearerAuth
// @Param    page     query int    false "Página"
// @Param    pageSize query int    false "Itens por página"
// @Param    search   query string false "Nome, CNPJ, contato, e-mail ou cidade"
// @Success  200 {object} dto.CompanyListResponse
// @Router   /companies [get]
func (h *CompaniesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// All godoc
// @Summary  Todas as empresas (id e nome)
// @Tags     companies
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} dto.CompanyOption
// @Router   /companies/all [get]
func (h *CompaniesHandler) All(c *gin.Context) {
	resp, err := h.svc.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompaniesHandler) Get(c *gin.Context) {
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
// @Summary  Cadastrar empresa
// @Tags     companies
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body     dto.CreateCompanyRequest true "Empresa"
// @Success  201  {object} dto.CompanyResponse
// @Failure  400  {object} apierror.ValidationError
// @Failure  409  {object} apierror.APIError "CNPJ já cadastrado"
// @Router   /companies [post]
func (h *CompaniesHandler) Create(c *gin.Context) {
	var req dto.CreateCompanyRequest
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

func (h *CompaniesHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateCompanyRequest
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
// @Summary  Excluir empresa
// @Description Bloqueado enquanto houver serviços ou orçamentos vinculados.
// @Tags     companies
// @Produce  json
// @Security BearerAuth
// @Param    id  path     string true "UUID da empresa"
// @Success  200 {object} dto.MessageResponse
// @Failure  400 {object} apierror.APIError
// @Failure  404 {object} apierror.APIError
// @Router   /companies/{id} [delete]
func (h *CompaniesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Empresa excluída com sucesso"})
}
