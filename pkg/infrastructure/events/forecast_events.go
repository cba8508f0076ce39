package events

import (
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const (
	ForecastCorrectionUpdatedEvent = "forecast.correction.updated"
	ForecastRedistributedEvent     = "forecast.redistributed"
	ExceptionStatusChangedEvent    = "exception.status.changed"
)

type ForecastCorrectionUpdated struct {
	Key   entities.ForecastKey `json:"key"`
	Value float64              `json:"value"`
}

type ForecastRedistributed struct {
	ProductID  entities.ProductID            `json:"product_id"`
	LocationID entities.LocationID           `json:"location_id"`
	Month      time.Time                     `json:"month"`
	Target     float64                       `json:"target"`
	Allocated  int64                         `json:"allocated"`
	Values     map[entities.CustomerID]int64 `json:"values"`
}

type ExceptionStatusChanged struct {
	ExceptionID string                    `json:"exception_id"`
	Status      entities.ResolutionStatus `json:"status"`
}

// ForecastStream names the stream holding all forecast events of one item
func ForecastStream(productID entities.ProductID, locationID entities.LocationID) string {
	return "forecast:" + entities.ItemKey{ProductID: productID, LocationID: locationID}.String()
}

func NewForecastCorrectionUpdatedEvent(key entities.ForecastKey, value float64) Event {
	return NewEvent(
		ForecastCorrectionUpdatedEvent,
		ForecastStream(key.ProductID, key.LocationID),
		ForecastCorrectionUpdated{Key: key, Value: value},
	)
}

func NewForecastRedistributedEvent(redistributed ForecastRedistributed) Event {
	return NewEvent(
		ForecastRedistributedEvent,
		ForecastStream(redistributed.ProductID, redistributed.LocationID),
		redistributed,
	)
}

func NewExceptionStatusChangedEvent(exceptionID string, status entities.ResolutionStatus) Event {
	return NewEvent(
		ExceptionStatusChangedEvent,
		"exception:"+exceptionID,
		ExceptionStatusChanged{ExceptionID: exceptionID, Status: status},
	)
}
