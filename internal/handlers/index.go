package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const indexPage = `
        <h2>ACB PAO Login</h2>
        <form method="post" action="/login" enctype="application/json">
            Use curl or Postman to test login: POST /login with JSON {"username": "yourname", "password": "yourpass"}
        </form>
    `

// Index serves the informational landing page.
func Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}
