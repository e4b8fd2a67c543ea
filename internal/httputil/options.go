package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func options(c *gin.Context, allow string) {
	c.Header("allow", allow)
	c.Status(http.StatusNoContent)
}

func OptionsGet(c *gin.Context) {
	options(c, "OPTIONS, GET")
}

func OptionsPost(c *gin.Context) {
	options(c, "OPTIONS, POST")
}

func OptionsGetPost(c *gin.Context) {
	options(c, "OPTIONS, GET, POST")
}

func OptionsGetPut(c *gin.Context) {
	options(c, "OPTIONS, GET, PUT")
}

func OptionsGetDelete(c *gin.Context) {
	options(c, "OPTIONS, GET, DELETE")
}

func OptionsPatchDelete(c *gin.Context) {
	options(c, "OPTIONS, PATCH, DELETE")
}

func OptionsPutDelete(c *gin.Context) {
	options(c, "OPTIONS, PUT, DELETE")
}

func OptionsDelete(c *gin.Context) {
	options(c, "OPTIONS, DELETE")
}
