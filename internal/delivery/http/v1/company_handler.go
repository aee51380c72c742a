package v1

import (
	"net/http"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyUC domain.CompanyUsecase
}

func NewCompanyHandler(protected *gin.RouterGroup, companyUC domain.CompanyUsecase) {
	handler := &CompanyHandler{companyUC: companyUC}

	companies := protected.Group("/companies")
	{
		companies.GET("", handler.List)
		companies.GET("/:id", handler.Get)
		companies.POST("", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter), handler.Create)
		companies.PUT("/:id", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter), handler.Update)
		companies.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), handler.Delete)
	}
}

// List godoc
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Param        search     query     string  false  "Name search"
// @Param        status     query     string  false  "active or inactive"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /companies [get]
// @Security     BearerAuth
func (h *CompanyHandler) List(c *gin.Context) {
	result, err := h.companyUC.ListCompanies(c.Request.Context(), c.Query("search"), c.Query("status"), pageOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company list", result)
}

// Get godoc
// @Summary      Get company
// @Tags         companies
// @Produce      json
// @Param        id   path      int  true  "Company ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
// @Security     BearerAuth
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	company, err := h.companyUC.GetCompany(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company details", company)
}

// Create godoc
// @Summary      Create company
// @Description  A recruiter may own at most one company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        company  body      domain.Company  true  "Company JSON"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /companies [post]
// @Security     BearerAuth
func (h *CompanyHandler) Create(c *gin.Context) {
	var company domain.Company
	if !bindJSON(c, &company) {
		return
	}
	if err := h.companyUC.CreateCompany(c.Request.Context(), actorOf(c), &company); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Company created", company)
}

// Update godoc
// @Summary      Update company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Company ID"
// @Param        company  body      domain.Company  true  "Company JSON"
// @Success      200      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /companies/{id} [put]
// @Security     BearerAuth
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var company domain.Company
	if !bindJSON(c, &company) {
		return
	}
	company.ID = id
	if err := h.companyUC.UpdateCompany(c.Request.Context(), actorOf(c), &company); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company updated", company)
}

// Delete godoc
// @Summary      Delete company
// @Tags         companies
// @Produce      json
// @Param        id   path      int  true  "Company ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [delete]
// @Security     BearerAuth
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.companyUC.DeleteCompany(c.Request.Context(), actorOf(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company deleted", nil)
}
