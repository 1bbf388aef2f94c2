package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alibukhari13/slack-attendance/entity"
	"github.com/alibukhari13/slack-attendance/service"
)

type IdentityController struct {
	svc service.IdentityService
}

func NewIdentityController(svc service.IdentityService) *IdentityController {
	return &IdentityController{svc: svc}
}

func (i *IdentityController) Enroll(c *gin.Context) {
	var req entity.EnrollIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ident, err := i.svc.Enroll(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ident)
}

func (i *IdentityController) List(c *gin.Context) {
	idents, err := i.svc.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"identities": idents})
}

func (i *IdentityController) Remove(c *gin.Context) {
	if err := i.svc.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
