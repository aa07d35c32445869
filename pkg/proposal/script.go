package proposal

import "strconv"

// NewSection asks the board to append a custom section.
type NewSection struct {
	Title string
}

// Step is one fixed entry of the demo conversation tape.
type Step struct {
	ExpectedUserUtterance string
	AssistantReply        string
	SystemNotice          string
	Patches               []SectionPatch
	NewSection            *NewSection
}

// Script is the read-only, linear conversation tape.
type Script []Step

// At returns the step under the cursor, or false once the tape is exhausted.
func (s Script) At(i int) (Step, bool) {
	if i < 0 || i >= len(s) {
		return Step{}, false
	}
	return s[i], true
}

func (s Script) Len() int { return len(s) }

const WelcomeMessage = "Hi! I'm your grant writing assistant. Let's create your proposal together.\n\n" +
	"To start, tell me: What project do you want funding for?"

// StandardSections returns a fresh copy of the eleven baseline sections.
func StandardSections() []Section {
	titles := []struct {
		title     string
		canDelete bool
	}{
		{"Executive Summary", false},
		{"Community Context", false},
		{"Problem Statement", false},
		{"Project Description & Objectives", false},
		{"Implementation Plan & Governance", false},
		{"Budget & Financial Plan", false},
		{"Outcomes & Evaluation", false},
		{"Alignment & Sustainability", false},
		{"Risk Management", false},
		{"Letters of Support", true},
		{"Attachments", true},
	}

	out := make([]Section, len(titles))
	for i, t := range titles {
		out[i] = Section{
			ID:        strconv.Itoa(i + 1),
			Title:     t.title,
			Status:    StatusIncomplete,
			CanDelete: t.canDelete,
		}
	}
	return out
}

// DemoScript is the greenhouse walkthrough used by the prototype.
func DemoScript() Script {
	return Script{
		{
			ExpectedUserUtterance: "We want to build a community greenhouse to grow fresh food year-round",
			AssistantReply: "That's excellent! A community greenhouse for year-round food production. " +
				"This type of project often aligns well with food security and climate adaptation funding.\n\n" +
				"Which funding program are you applying to?",
		},
		{
			ExpectedUserUtterance: "Indigenous Community Support Fund",
			AssistantReply: "Perfect! The Indigenous Community Support Fund prioritizes food security, community wellness, " +
				"and climate adaptation - all great matches for your greenhouse project.\n\n" +
				"Do you have your Community Economic Development Plan? If you upload it, I can ensure we align your " +
				"proposal with your community's documented priorities. This makes your application much stronger.",
		},
		{
			ExpectedUserUtterance: "[Uploads CED Plan]",
			AssistantReply:        "Thanks for uploading your CED Plan! Give me just a moment to analyze it...",
			SystemNotice: "Analyzing Arctic Bay CED Plan 2024.pdf...\n\n" +
				"Found key priorities:\n" +
				"  - Youth employment (mentioned 8 times)\n" +
				"  - Food security (mentioned 12 times)\n" +
				"  - Climate adaptation (mentioned 6 times)\n" +
				"  - Cultural preservation (mentioned 5 times)\n\n" +
				"Demographic data extracted\nCommunity challenges identified\nPast initiatives reviewed",
		},
		{
			AssistantReply: "Excellent! I've analyzed your CED Plan and I can see some really strong alignments:\n\n" +
				"Your greenhouse project directly addresses your community's TOP priority: food security " +
				"(mentioned 12 times in your plan)\n\n" +
				"It also supports youth employment - your plan mentions needing 15-20 new jobs for young people\n\n" +
				"The Indigenous Community Support Fund emphasizes climate adaptation, which your greenhouse " +
				"addresses through local food production\n\n" +
				"I'm already drafting your Executive Summary based on this. Now, tell me more about your " +
				"greenhouse project in your own words - why does your community need this?",
			SystemNotice: "Section 1: Executive Summary - Draft generated\nSection 2: Community Context - In progress",
			Patches: []SectionPatch{
				{SectionID: "1", Status: StatusPtr(StatusComplete)},
				{SectionID: "2", Status: StatusPtr(StatusInProgress)},
			},
		},
		{
			ExpectedUserUtterance: "Right now we have no local food production. Everything is flown in and costs 3-4 times " +
				"more than down south. Our youth don't have jobs and many are leaving. A greenhouse would let us grow " +
				"vegetables year-round, employ 10 young people, and teach traditional and modern growing methods together.",
			AssistantReply: "This is really powerful! I love how you're connecting food security, youth employment, " +
				"AND cultural learning. Let me update the sections with this information...",
			SystemNotice: "Section 2: Community Context - Complete\nSection 3: Problem Statement - Complete\n" +
				"Section 4: Project Description - Draft generated",
			Patches: []SectionPatch{
				{SectionID: "2", Status: StatusPtr(StatusComplete)},
				{SectionID: "3", Status: StatusPtr(StatusComplete)},
				{SectionID: "4", Status: StatusPtr(StatusInProgress)},
			},
		},
		{
			AssistantReply: "Great! I've generated your Problem Statement and started your Project Description. " +
				"Would you like me to read the Executive Summary back to you so you can hear how it sounds?",
		},
		{
			ExpectedUserUtterance: "Yes, read it to me",
			AssistantReply: "\"Arctic Bay First Nation proposes to establish a community-owned greenhouse facility to " +
				"address critical food security challenges while creating employment opportunities for youth. This " +
				"3-year project will enable year-round production of fresh vegetables, employ 10 community members, and " +
				"integrate traditional knowledge with modern sustainable agriculture practices. We request $500,000 to " +
				"construct facilities, purchase equipment, and deliver training programs.\"\n\n" +
				"How does that sound? Would you like me to adjust anything?",
		},
		{
			ExpectedUserUtterance: "That's really good! But emphasize the youth employment part more - that's really important to our community",
			AssistantReply:        "Absolutely! Youth employment is critical. I'll revise the Executive Summary to lead with that...",
			SystemNotice:          "Section 1: Executive Summary - Updated\n  Emphasis added: Youth employment",
			Patches: []SectionPatch{
				{SectionID: "1", Content: StringPtr("Updated content...")},
			},
		},
		{
			AssistantReply: "Perfect! I've updated it. Now, I notice your CED Plan really emphasizes youth development " +
				"and your funding program loves seeing detailed impact plans.\n\n" +
				"Would you like me to add a dedicated \"Youth Impact & Training Plan\" section?",
		},
		{
			ExpectedUserUtterance: "Yes, add that section",
			AssistantReply: "Done! I've added \"Youth Impact & Training Plan\" as section 12.\n\n" +
				"Now, let's talk budget. You mentioned $500,000 total. Can you break that down a bit?\n\n" +
				"- Construction: $300K\n- Equipment: $150K\n- Training: $50K\n\nIs that right? Any other costs?",
			SystemNotice: "New custom section added: Youth Impact & Training Plan\nSection 12: Youth Impact - Draft generated",
			Patches: []SectionPatch{
				{SectionID: "6", Status: StatusPtr(StatusInProgress)},
			},
			NewSection: &NewSection{Title: "Youth Impact & Training Plan"},
		},
	}
}
