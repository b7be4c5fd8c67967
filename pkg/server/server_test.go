package server_test

import (
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"winenow.app/WineNowNote/pkg/auth"
	"winenow.app/WineNowNote/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method string, target string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	c.Request = httptest.NewRequest(method, target, body)
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}

	return c, recorder
}

func testUser(id uint) *model.User {
	return &model.User{
		Model:    gorm.Model{ID: id},
		UUID:     uuid.New(),
		Username: "taster",
		Email:    "taster@example.com",
	}
}

func asUser(c *gin.Context, user *model.User) {
	auth.SetCurrentUser(c, user)
}

func withParam(c *gin.Context, name string, value string) {
	c.Params = append(c.Params, gin.Param{Key: name, Value: value})
}
