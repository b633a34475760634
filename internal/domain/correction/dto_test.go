package correction

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	return verrs.ToMap()
}

func TestCreateCorrectionRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateCorrectionRequest
		wantField string
	}{
		{
			name:      "missing type",
			req:       CreateCorrectionRequest{Reason: "x", RequestedDate: strPtr("2024-03-04")},
			wantField: "request_type",
		},
		{
			name:      "unknown type",
			req:       CreateCorrectionRequest{RequestType: "overtime", Reason: "x", RequestedDate: strPtr("2024-03-04")},
			wantField: "request_type",
		},
		{
			name:      "missing reason",
			req:       CreateCorrectionRequest{RequestType: "correction", Reason: "  ", RequestedDate: strPtr("2024-03-04")},
			wantField: "reason",
		},
		{
			name:      "forgot checkout without target",
			req:       CreateCorrectionRequest{RequestType: "forgot_checkout", Reason: "x", RequestedDate: strPtr("2024-03-04")},
			wantField: "new_check_out",
		},
		{
			name:      "forgot checkin without target",
			req:       CreateCorrectionRequest{RequestType: "forgot_checkin", Reason: "x", RequestedDate: strPtr("2024-03-04")},
			wantField: "new_check_in",
		},
		{
			name: "check out before check in",
			req: CreateCorrectionRequest{
				RequestType: "correction",
				Reason:      "x",
				NewCheckIn:  strPtr("2024-03-04T09:00:00+07:00"),
				NewCheckOut: strPtr("2024-03-04T08:00:00+07:00"),
			},
			wantField: "new_check_out",
		},
		{
			name:      "bad timestamp",
			req:       CreateCorrectionRequest{RequestType: "forgot_checkout", Reason: "x", NewCheckOut: strPtr("17:00")},
			wantField: "new_check_out",
		},
		{
			name:      "nothing to locate the day",
			req:       CreateCorrectionRequest{RequestType: "correction", Reason: "x"},
			wantField: "requested_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			assert.Contains(t, validationFields(t, err), tt.wantField)
		})
	}
}

func TestCreateCorrectionRequest_ValidForgotCheckout(t *testing.T) {
	req := CreateCorrectionRequest{
		RequestType: "forgot_checkout",
		Reason:      "left in a hurry",
		NewCheckOut: strPtr("2024-03-04T17:05:00+07:00"),
	}
	assert.NoError(t, req.Validate())
}

func TestCreateCorrectionRequest_ToEntity(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	req := CreateCorrectionRequest{
		RequestType:   "correction",
		Reason:        " wrong time ",
		RequestedDate: strPtr("2024-03-04"),
		NewCheckIn:    strPtr("2024-03-04T01:00:00Z"),
	}
	require.NoError(t, req.Validate())

	entity, err := req.ToEntity("emp-1", loc)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, entity.Status)
	assert.Equal(t, "wrong time", entity.Reason)
	require.NotNil(t, entity.RequestedDate)
	assert.Equal(t, 12, entity.RequestedDate.Hour())
	require.NotNil(t, entity.NewCheckIn)
	assert.Equal(t, 8, entity.NewCheckIn.Hour())
	assert.Nil(t, entity.NewCheckOut)
}

func TestCorrectionFilter_Validate(t *testing.T) {
	f := CorrectionFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	bad := CorrectionFilter{Status: strPtr("done"), Limit: 101}
	fields := validationFields(t, bad.Validate())
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "limit")
}
