package v1

import (
	"net/http"
	"strconv"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	studentUC domain.StudentUsecase
}

func NewStudentHandler(protected *gin.RouterGroup, studentUC domain.StudentUsecase) {
	handler := &StudentHandler{studentUC: studentUC}

	students := protected.Group("/students")
	{
		students.GET("/me", handler.GetMine)
		students.PUT("/me", middleware.RequireRole(domain.RoleStudent), handler.UpsertMine)

		students.GET("", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter), handler.Search)
		students.GET("/:id", handler.Get)
		students.POST("", middleware.RequireRole(domain.RoleAdmin), handler.Create)
		students.PUT("/:id", middleware.RequireRole(domain.RoleAdmin), handler.Update)
		students.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), handler.Delete)
	}
}

// Search godoc
// @Summary      Search students
// @Description  Filter students by name/roll/email, department, batch, CGPA, placement and skills
// @Tags         students
// @Produce      json
// @Param        search       query     string  false  "Name, roll number or email"
// @Param        departments  query     string  false  "Comma separated departments"
// @Param        batch_year   query     int     false  "Batch year"
// @Param        min_cgpa     query     number  false  "Minimum CGPA"
// @Param        is_placed    query     bool    false  "Placement status"
// @Param        skills       query     string  false  "Comma separated skills (any match)"
// @Param        sort_by      query     string  false  "name, cgpa, batch_year or created_at"
// @Param        sort_order   query     string  false  "asc or desc"
// @Param        page         query     int     false  "Page number"
// @Param        page_size    query     int     false  "Page size"
// @Success      200          {object}  response.Response
// @Failure      400          {object}  response.Response
// @Router       /students [get]
// @Security     BearerAuth
func (h *StudentHandler) Search(c *gin.Context) {
	f := domain.StudentFilter{
		Search:      c.Query("search"),
		Departments: queryList(c, "departments"),
		BatchYear:   queryInt(c, "batch_year"),
		IsPlaced:    queryBool(c, "is_placed"),
		Skills:      queryList(c, "skills"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        pageOf(c),
	}
	if raw := c.Query("min_cgpa"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.Error(apperror.BadRequest("min_cgpa must be a number"))
			return
		}
		f.MinCGPA = &v
	}

	result, err := h.studentUC.SearchStudents(c.Request.Context(), actorOf(c), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student list", result)
}

// GetMine godoc
// @Summary      Own student record
// @Tags         students
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /students/me [get]
// @Security     BearerAuth
func (h *StudentHandler) GetMine(c *gin.Context) {
	s, err := h.studentUC.GetMyStudent(c.Request.Context(), actorOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student record", s)
}

// UpsertMine godoc
// @Summary      Create or update own student record
// @Description  Placement fields are ignored
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        student  body      domain.Student  true  "Student JSON"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /students/me [put]
// @Security     BearerAuth
func (h *StudentHandler) UpsertMine(c *gin.Context) {
	var s domain.Student
	if !bindJSON(c, &s) {
		return
	}
	saved, err := h.studentUC.UpsertMyStudent(c.Request.Context(), actorOf(c), &s)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student record saved", saved)
}

// Get godoc
// @Summary      Get student
// @Tags         students
// @Produce      json
// @Param        id   path      int  true  "Student ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /students/{id} [get]
// @Security     BearerAuth
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.studentUC.GetStudent(c.Request.Context(), actorOf(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student record", s)
}

// Create godoc
// @Summary      Create student
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        student  body      domain.Student  true  "Student JSON"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /students [post]
// @Security     BearerAuth
func (h *StudentHandler) Create(c *gin.Context) {
	var s domain.Student
	if !bindJSON(c, &s) {
		return
	}
	if err := h.studentUC.CreateStudent(c.Request.Context(), actorOf(c), &s); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Student created", s)
}

// Update godoc
// @Summary      Update student
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Student ID"
// @Param        student  body      domain.Student  true  "Student JSON"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /students/{id} [put]
// @Security     BearerAuth
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var s domain.Student
	if !bindJSON(c, &s) {
		return
	}
	s.ID = id
	if err := h.studentUC.UpdateStudent(c.Request.Context(), actorOf(c), &s); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student updated", s)
}

// Delete godoc
// @Summary      Delete student
// @Tags         students
// @Produce      json
// @Param        id   path      int  true  "Student ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /students/{id} [delete]
// @Security     BearerAuth
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.studentUC.DeleteStudent(c.Request.Context(), actorOf(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student deleted", nil)
}
