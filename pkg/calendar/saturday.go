package calendar

import (
	"context"
	_ "embed"
	"os"
	"strings"
	"time"

	"github.com/shvilbus/shvilbus/pkg/htdf"
	"github.com/shvilbus/shvilbus/pkg/util"
	"gopkg.in/yaml.v3"
)

//go:embed saturday_service.yaml
var defaultSaturdayService []byte

// SaturdayWindow describes one region's Saturday exception service. The
// window end is either a fixed clock time or the literal "havdalah",
// resolved against the calendar source per date.
type SaturdayWindow struct {
	Description string `yaml:"description"`
	WindowEnd   string `yaml:"window_end"`
}

type SaturdayService struct {
	Regions map[string]SaturdayWindow `yaml:"regions"`
}

// LoadSaturdayService reads the exception-region table: the embedded
// defaults, or the yaml file named by SHVILBUS_SATURDAY_SERVICE.
func LoadSaturdayService() (*SaturdayService, error) {
	data := defaultSaturdayService

	env := util.GetEnvironmentVariables()
	if path := env["SHVILBUS_SATURDAY_SERVICE"]; path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = fileData
	}

	var service SaturdayService
	if err := yaml.Unmarshal(data, &service); err != nil {
		return nil, err
	}

	return &service, nil
}

func (s *SaturdayService) Lookup(region string) (SaturdayWindow, bool) {
	if s == nil {
		return SaturdayWindow{}, false
	}

	window, exists := s.Regions[strings.ToLower(strings.TrimSpace(region))]
	return window, exists
}

func (w SaturdayWindow) EndOn(ctx context.Context, date time.Time, candles CandleSource) (time.Time, bool, error) {
	if strings.EqualFold(w.WindowEnd, "havdalah") {
		return candles.Havdalah(ctx, date)
	}

	end, err := htdf.ParseClockTime(w.WindowEnd)
	if err != nil {
		return time.Time{}, false, err
	}

	return end.On(date), false, nil
}
