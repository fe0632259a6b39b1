// Package analytics computes agreement statistics over lead classification
// ledgers: how often human reviewers confirm the bot's classification. The
// ledger keeps every bot and human entry, so the rates come straight from
// recorded history rather than separate counters.
package analytics

import "github.com/inlethq/triage/internal/leads"

// ClassAgreement aggregates reviewed bot entries for one classification.
type ClassAgreement struct {
	Reviewed   int `json:"reviewed"`
	Agreements int `json:"agreements"`
}

// AgreementReport summarizes bot/human agreement across all leads. A bot
// entry counts as reviewed when a later human entry exists in the same
// ledger; it counts as an agreement when that human entry kept the bot's
// classification.
type AgreementReport struct {
	Leads            int                       `json:"leads"`
	BotEntries       int                       `json:"bot_entries"`
	Reviewed         int                       `json:"reviewed"`
	Agreements       int                       `json:"agreements"`
	AgreementRate    float64                   `json:"agreement_rate"`
	ByClassification map[string]ClassAgreement `json:"by_classification"`
}

// BuildReport computes agreement statistics from a set of ledgers. Each bot
// entry is paired with the next human entry after it, if any; unreviewed bot
// entries contribute to volume but not to the rate.
func BuildReport(ledgers []leads.Ledger) *AgreementReport {
	report := &AgreementReport{
		Leads:            len(ledgers),
		ByClassification: make(map[string]ClassAgreement),
	}

	for _, ledger := range ledgers {
		entries := ledger.Entries()

		for i, e := range entries {
			if e.Author != leads.AuthorBot {
				continue
			}
			report.BotEntries++

			human := nextHuman(entries, i+1)
			if human == nil {
				continue
			}

			class := string(e.Classification)
			agg := report.ByClassification[class]
			agg.Reviewed++
			report.Reviewed++

			if human.Classification == e.Classification {
				agg.Agreements++
				report.Agreements++
			}

			report.ByClassification[class] = agg
		}
	}

	if report.Reviewed > 0 {
		report.AgreementRate = float64(report.Agreements) / float64(report.Reviewed)
	}

	return report
}

func nextHuman(entries []leads.Entry, from int) *leads.Entry {
	for i := from; i < len(entries); i++ {
		if entries[i].Author == leads.AuthorHuman {
			return &entries[i]
		}
	}
	return nil
}
