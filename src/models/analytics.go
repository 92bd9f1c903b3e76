package models

import "github.com/shopspring/decimal"

type DailyTotal struct {
	Date     string          `json:"date"`
	Spent    decimal.Decimal `json:"spent"`
	Received decimal.Decimal `json:"received"`
}

type Analytics struct {
	Transactions []Transaction   `json:"transactions"`
	Spent        decimal.Decimal `json:"spent"`
	Received     decimal.Decimal `json:"received"`
	Net          decimal.Decimal `json:"net"`
	Daily        []DailyTotal    `json:"daily"`
}
