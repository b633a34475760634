package shift

import (
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML document read by the seed-shifts command:
//
//	shifts:
//	  - name: Morning
//	    start_time: "08:00"
//	    end_time: "17:00"
//	    early_check_in_minutes: 30
//	    late_checkout_minutes: 15
type SeedFile struct {
	Shifts []SeedShift `yaml:"shifts" validate:"required,min=1,dive"`
}

type SeedShift struct {
	Name                string `yaml:"name" validate:"required"`
	StartTime           string `yaml:"start_time" validate:"required"`
	EndTime             string `yaml:"end_time" validate:"required"`
	EarlyCheckInMinutes int    `yaml:"early_check_in_minutes" validate:"gte=0"`
	LateCheckoutMinutes int    `yaml:"late_checkout_minutes" validate:"gte=0"`
}

// ParseSeed decodes and structurally validates a seed document.
// Clock formats and windows are checked later by the service.
func ParseSeed(r io.Reader) ([]shift.CreateShiftRequest, error) {
	var file SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("seed file is empty")
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(file); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	defs := make([]shift.CreateShiftRequest, 0, len(file.Shifts))
	for _, s := range file.Shifts {
		defs = append(defs, shift.CreateShiftRequest{
			Name:                s.Name,
			StartTime:           s.StartTime,
			EndTime:             s.EndTime,
			EarlyCheckInMinutes: s.EarlyCheckInMinutes,
			LateCheckoutMinutes: s.LateCheckoutMinutes,
		})
	}
	return defs, nil
}

func LoadSeedFile(path string) ([]shift.CreateShiftRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return ParseSeed(f)
}
