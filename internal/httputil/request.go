package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// BindData binds the data from the request to the struct passed in the interface.
func BindData(c *gin.Context, data interface{}) error {
	if err := c.ShouldBindJSON(data); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrRequestBodyEmpty
		}

		var jsonUnmarshalTypeError *json.UnmarshalTypeError
		if errors.As(err, &jsonUnmarshalTypeError) {
			return fmt.Errorf("%w: %s", ErrInvalidBody, err.Error())
		}

		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return ErrInvalidBody
	}

	return nil
}

// RawBody returns the request body. It must be a JSON object.
func RawBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return nil, ErrInvalidBody
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrRequestBodyEmpty
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		return nil, ErrInvalidBody
	}

	return body, nil
}

// HeaderBool reports if the header is set to a true value as understood
// by strconv.ParseBool.
func HeaderBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.GetHeader(name)))
	return err == nil && v
}

// HeaderTime parses an RFC3339 timestamp from the header. An empty header
// returns nil.
func HeaderTime(c *gin.Context, name string) (*time.Time, error) {
	v := strings.TrimSpace(c.GetHeader(name))
	if v == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC3339 timestamp", ErrInvalidHeader, name)
	}

	return &t, nil
}
