package lead

// Record is one inbound lead submission. Every field is optional; absent
// fields map to empty cells. JSON tags are the wire contract with the
// capture form.
type Record struct {
	Timestamp      string `json:"timestamp"`
	Owner          string `json:"ae_owner"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Products       string `json:"products_discussed"`
	DemoGiven      string `json:"demo_given"`
	MeetingQuality string `json:"meeting_quality"`
	Summary        string `json:"conversation_summary"`
	PainPoints     string `json:"pain_points"`
	NextSteps      string `json:"next_steps"`
	CaptureMethod  string `json:"capture_method"`
	IntentLevel    string `json:"intent_level"`
	Scenario       string `json:"scenario"`
	LifecycleStage string `json:"lifecycle_stage"`

	// Qualification fields, extended schema only.
	PreviousInteractions string `json:"previous_interactions"`
	OrgDescription       string `json:"org_description"`
	EventRole            string `json:"event_role"`
	RevenueRange         string `json:"revenue_range"`
	Booth                string `json:"booth"`
	DistributionChannels string `json:"distribution_channels"`
	CompetitorSignals    string `json:"competitor_signals"`
	DonationTools        string `json:"donation_tools"`
	PodcastLink          string `json:"podcast_link"`
	SpeakingSessions     string `json:"speaking_sessions"`
}

func (r Record) coreValues() []string {
	return []string{
		r.Timestamp,
		r.Owner,
		r.FirstName,
		r.LastName,
		r.Title,
		r.Company,
		r.Website,
		r.Email,
		r.Phone,
		r.Products,
		r.DemoGiven,
		r.MeetingQuality,
		r.Summary,
		r.PainPoints,
		r.NextSteps,
		r.CaptureMethod,
		r.IntentLevel,
		r.Scenario,
		r.LifecycleStage,
	}
}

func (r Record) qualificationValues() []string {
	return []string{
		r.PreviousInteractions,
		r.OrgDescription,
		r.EventRole,
		r.RevenueRange,
		r.Booth,
		r.DistributionChannels,
		r.CompetitorSignals,
		r.DonationTools,
		r.PodcastLink,
		r.SpeakingSessions,
	}
}
