package core

import "time"

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Payload is the JSON document sent to the endpoint.
type Payload struct {
	District    string             `json:"district"`
	Division    string             `json:"dn"`
	Subdivision string             `json:"gn"`
	File        *EncodedAttachment `json:"file"`
	Timestamp   string             `json:"timestamp"`
	Projects    []ProjectPayload   `json:"projects"`
}

// ProjectPayload is one project inside a Payload.
type ProjectPayload struct {
	No            string `json:"no"`
	Proposal      string `json:"proposal"`
	EstimatedCost string `json:"estimatedCost"`
	Approach      string `json:"approach"`
	SDGGoals      string `json:"sdgGoals"`
	FundingSource string `json:"fundingSource"`
	Name          string `json:"name"`
	Institution   string `json:"institution"`
}

// AssemblePayload builds the transmission document. The timestamp is the
// moment of assembly, not of form entry.
func AssemblePayload(top TopLevelFields, file *EncodedAttachment, records []SubRecord, at time.Time) Payload {
	projects := make([]ProjectPayload, 0, len(records))
	for _, rec := range records {
		projects = append(projects, ProjectPayload{
			No:            rec.No,
			Proposal:      rec.Proposal,
			EstimatedCost: rec.EstimatedCost,
			Approach:      rec.Approach,
			SDGGoals:      rec.SDGGoals,
			FundingSource: rec.FundingSource,
			Name:          rec.Name,
			Institution:   rec.Institution,
		})
	}

	return Payload{
		District:    top.District,
		Division:    top.Division,
		Subdivision: top.Subdivision,
		File:        file,
		Timestamp:   at.UTC().Format(TimestampLayout),
		Projects:    projects,
	}
}
