package diagnosis

// Strategy selects the diagnosis prompt.
type Strategy int

const (
	// StrategyGapAnalysis compares the profile with the desired roles.
	StrategyGapAnalysis Strategy = iota
	// StrategyCareerSuggestion proposes career paths for undecided users.
	StrategyCareerSuggestion
)

func (s Strategy) String() string {
	if s == StrategyCareerSuggestion {
		return "career-suggestion"
	}
	return "gap-analysis"
}

const responseSchema = `Reply with STRICTLY one JSON object and nothing else (no markdown), with exactly these keys:
{
  "summary": string,
  "strengths": string,
  "advice": string,
  "skillGapAnalysis": string,
  "experienceMethods": string,
  "roadmap": [
    {"stepNumber": integer, "title": string,
     "details": {"description": string, "recommendedActions": string[], "referenceResources": string[]}}
  ]
}
Use [] for empty lists, never null.`

const careerSuggestionPrompt = `You are an experienced career advisor.
The user has not decided which role to aim for. Based on the profile below, propose three viable career paths that fit their skills and experience.
Describe the three paths in "summary" and "advice", explain why they fit in "strengths", list what each path still requires in "skillGapAnalysis", and suggest ways to gain practical experience in "experienceMethods".
Build "roadmap" as ordered steps that lead toward the most promising path, 4 to 8 steps.

` + responseSchema

const gapAnalysisPrompt = `You are an experienced career advisor.
Compare the user's current profile with the roles they want (desiredJobTitles).
Summarize their position in "summary", name their strengths in "strengths", explain the gap between the current profile and the desired roles in "skillGapAnalysis", give concrete advice in "advice", and suggest ways to gain the missing experience in "experienceMethods".
Build "roadmap" as ordered learning steps that close the gap, 4 to 8 steps.

` + responseSchema

const stepDetailPrompt = `You are a mentor writing a study guide.
Expand the learning step below into a practical explanation in Markdown: why it matters, what to learn, a suggested order, concrete exercises and how to tell when the step is done.
Write at most about 800 words. Reply with Markdown only.`
