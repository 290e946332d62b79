package processors

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/tourledger/src/logger"
	"github.com/username/tourledger/src/models"
	"github.com/username/tourledger/src/utils"
)

// ErrRateUnavailable signals that no exchange rate could be resolved for a
// conversion. Callers must treat it as "unknown", not as zero or 1:1.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

type currencyConverterImpl struct {
	rates RateSource
}

// NewCurrencyConverter creates a converter backed by the given rate source.
func NewCurrencyConverter(rates RateSource) CurrencyConverter {
	return &currencyConverterImpl{rates: rates}
}

// Convert resolves the from → to multiplier effective on date and applies it.
// Same-currency conversions return {value: amount, rate: 1} without
// consulting the rate source.
func (c *currencyConverterImpl) Convert(amount float64, date time.Time, from, to string) (*models.Conversion, error) {
	if from == to {
		return &models.Conversion{Value: amount, Rate: 1}, nil
	}

	rate, err := c.rates.Rate(date, from, to)
	if err != nil || rate <= 0 {
		if logger.L != nil {
			logger.L.Warn("Exchange rate lookup failed",
				"from", from, "to", to, "date", date.Format(utils.DateLayout), "error", err)
		}
		return nil, fmt.Errorf("converting %s to %s on %s: %w",
			from, to, date.Format(utils.DateLayout), ErrRateUnavailable)
	}

	return &models.Conversion{
		Value: utils.RoundCurrency(amount * rate),
		Rate:  rate,
	}, nil
}
