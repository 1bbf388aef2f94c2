package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alibukhari13/slack-attendance/service"
)

type AttendanceController struct {
	svc service.AttendanceService
}

func NewAttendanceController(svc service.AttendanceService) *AttendanceController {
	return &AttendanceController{svc: svc}
}

// ByDate lists all records for one calendar day (YYYY-MM-DD).
func (a *AttendanceController) ByDate(c *gin.Context) {
	date := c.Param("date")
	recs, err := a.svc.ListByDate(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "records": recs})
}

// ByUser lists a user's most recent records, newest day first.
func (a *AttendanceController) ByUser(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "31"))
	recs, err := a.svc.ListByUser(c.Param("userID"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}
