package models

import "time"

// ExchangeType selects which side of the exchange funnel is analyzed.
type ExchangeType string

const (
	Outgoing ExchangeType = "Outgoing"
	Incoming ExchangeType = "Incoming"
)

// Programme is one of the fixed exchange programmes.
type Programme string

const (
	GlobalVolunteer Programme = "Global Volunteer"
	GlobalTalent    Programme = "Global Talent"
	GlobalTeacher   Programme = "Global Teacher"
)

// AllProgrammes is the default selection when the caller names none.
var AllProgrammes = []Programme{GlobalVolunteer, GlobalTalent, GlobalTeacher}

// FilterSet is the immutable set of filters for one render. Built fresh per
// request; Interval is always "month" (the upstream API supports no other
// granularity here).
type FilterSet struct {
	ExchangeType ExchangeType `validate:"required,oneof=Outgoing Incoming"`
	Programmes   []Programme  `validate:"dive,oneof='Global Volunteer' 'Global Talent' 'Global Teacher'"`
	EntityID     int          `validate:"required,gt=0"`
	StartDate    time.Time    `validate:"required"`
	EndDate      time.Time    `validate:"required"`
	Interval     string
}

// Stage labels in funnel order. The ordering is load-bearing: conversion is
// computed only between adjacent entries of this sequence.
const (
	StageApplied   = "Applied"
	StageAccepted  = "Accepted"
	StageApproved  = "Approved"
	StageRealized  = "Realized"
	StageFinished  = "Finished"
	StageCompleted = "Completed"
)

// StageSequence defines funnel adjacency.
var StageSequence = []string{
	StageApplied, StageAccepted, StageApproved,
	StageRealized, StageFinished, StageCompleted,
}

// FunnelRow is one flattened histogram bucket.
type FunnelRow struct {
	Date  time.Time `json:"date"`
	Stage string    `json:"stage"`
	Count int       `json:"count"`
}

// FunnelTable is the ordered row set for one fetch: grouped by stage in
// protocol-key order, buckets in payload order. Not sorted by date.
type FunnelTable []FunnelRow

// PivotTable maps date -> stage -> summed count. Absent cells read as 0.
type PivotTable map[time.Time]map[string]int

// Column returns the sum of one stage's counts across all dates.
func (p PivotTable) Column(stage string) int {
	total := 0
	for _, byStage := range p {
		total += byStage[stage]
	}
	return total
}

// FunnelStep is one adjacent stage pair with its conversion ratio.
type FunnelStep struct {
	From           string  `json:"from"`
	To             string  `json:"to"`
	FromTotal      int     `json:"from_total"`
	ToTotal        int     `json:"to_total"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Metrics are the headline scalars of one render.
type Metrics struct {
	TotalApplied    int     `json:"total_applied"`
	TotalApproved   int     `json:"total_approved"`
	TotalRealized   int     `json:"total_realized"`
	RealizationRate float64 `json:"realization_rate"`
}
