package v1_test

import (
	"net/http"

	v1 "github.com/staffplan/backend/internal/controllers/v1"
	"github.com/staffplan/backend/internal/planning"
	"github.com/staffplan/backend/test"
)

func (suite *TestSuiteStandard) TestEntity() {
	recorder := test.Request(suite.T(), http.MethodPut, "http://example.com/v1/entities/e-1", planning.Entity{Name: "ACME GmbH", CurrencyCode: "EUR", TaxAccount: "4000"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.EntityResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal("e-1", response.Data.ID)
	suite.Assert().Equal("EUR", response.Data.CurrencyCode)

	_ = createTestUser(suite.T(), planning.User{Entity: "e-1"})

	recorder = test.Request(suite.T(), http.MethodDelete, "http://example.com/v1/entities/e-1", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), http.MethodDelete, "http://example.com/v1/entities/e-1", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEntityFails() {
	tests := []struct {
		name   string
		entity planning.Entity
	}{
		{"No name", planning.Entity{CurrencyCode: "EUR"}},
		{"Invalid currency", planning.Entity{Name: "ACME", CurrencyCode: "EURO"}},
		{"ID mismatch", planning.Entity{ID: "e-2", Name: "ACME"}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			recorder := test.Request(suite.T(), http.MethodPut, "http://example.com/v1/entities/e-1", tt.entity)
			test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
			suite.Assert().NotEmpty(test.DecodeError(suite.T(), &recorder))
		})
	}
}
