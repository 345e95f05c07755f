package dto

import (
	"time"

	domainbooking "pnjpremium/internal/domain/booking"
)

type MoneyView struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type LocationView struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	PlaceID string  `json:"place_id,omitempty"`
}

type CheckInView struct {
	At  time.Time `json:"at"`
	By  string    `json:"by"`
	Lat float64   `json:"lat"`
	Lon float64   `json:"lon"`
}

type CheckOutView struct {
	At time.Time `json:"at"`
	By string    `json:"by"`
}

type BookingView struct {
	ID              string        `json:"id"`
	PlayerID        string        `json:"player_id"`
	PNJID           string        `json:"pnj_id"`
	Date            string        `json:"date"`
	StartTime       string        `json:"start_time"`
	EndTime         string        `json:"end_time"`
	DurationMinutes int           `json:"duration_minutes"`
	Location        LocationView  `json:"location"`
	HourlyRate      MoneyView     `json:"hourly_rate"`
	TotalPrice      MoneyView     `json:"total_price"`
	PlatformFee     MoneyView     `json:"platform_fee"`
	PNJEarnings     MoneyView     `json:"pnj_earnings"`
	Status          string        `json:"status"`
	ChatID          string        `json:"chat_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	ConfirmedAt     *time.Time    `json:"confirmed_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
	CancelReason    string        `json:"cancel_reason,omitempty"`
	CancelledBy     string        `json:"cancelled_by,omitempty"`
	CheckIn         *CheckInView  `json:"check_in,omitempty"`
	CheckOut        *CheckOutView `json:"check_out,omitempty"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	view := BookingView{
		ID:              string(b.ID),
		PlayerID:        b.PlayerID,
		PNJID:           string(b.PNJID),
		Date:            b.Date.Format("2006-01-02"),
		StartTime:       b.Start.String(),
		EndTime:         b.End.String(),
		DurationMinutes: b.Duration,
		Location: LocationView{
			Name:    b.Location.Name,
			Address: b.Location.Address,
			Lat:     b.Location.Lat,
			Lon:     b.Location.Lon,
			PlaceID: b.Location.PlaceID,
		},
		HourlyRate:   MoneyView{Amount: b.HourlyRate.Amount, Currency: b.HourlyRate.Currency},
		TotalPrice:   MoneyView{Amount: b.Price.Total.Amount, Currency: b.Price.Total.Currency},
		PlatformFee:  MoneyView{Amount: b.Price.PlatformFee.Amount, Currency: b.Price.PlatformFee.Currency},
		PNJEarnings:  MoneyView{Amount: b.Price.PNJEarnings.Amount, Currency: b.Price.PNJEarnings.Currency},
		Status:       string(b.Status),
		ChatID:       b.ChatID,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
		ConfirmedAt:  b.ConfirmedAt,
		CompletedAt:  b.CompletedAt,
		CancelledAt:  b.CancelledAt,
		CancelReason: string(b.CancelReason),
		CancelledBy:  string(b.CancelledBy),
	}
	if b.CheckIn != nil {
		view.CheckIn = &CheckInView{At: b.CheckIn.At, By: string(b.CheckIn.By), Lat: b.CheckIn.Coordinates.Lat, Lon: b.CheckIn.Coordinates.Lon}
	}
	if b.CheckOut != nil {
		view.CheckOut = &CheckOutView{At: b.CheckOut.At, By: string(b.CheckOut.By)}
	}
	return view
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	views := make([]BookingView, 0, len(items))
	for _, b := range items {
		views = append(views, MapBooking(b))
	}
	return BookingCollection{Items: views}
}
