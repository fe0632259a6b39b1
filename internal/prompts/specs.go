package prompts

const researchSpec = `Respond with a JSON object matching this exact structure:

{
  "text": "<research summary>",
  "industry": "<industry tag>"
}

Field constraints:
- text: The research summary as flowing prose. No headings, no bullet
  markup. Two to five paragraphs depending on how much the submission
  supports.
- industry: A single lowercase industry label (e.g., "healthcare",
  "logistics", "fintech"). Empty string when the evidence does not
  support a confident tag.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Base every claim on the submission content; never invent company facts
- Prefer an empty industry over a speculative one`

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "classification": "<class>",
  "confidence": 0.0,
  "reasoning": "<explanation>"
}

Field constraints:
- classification: Exactly one of high-quality, low-quality, support,
  existing-customer. No other values, no additional punctuation.
- confidence: A number between 0.0 and 1.0 reflecting how well the
  evidence supports the chosen class.
- reasoning: Brief explanation of the decisive evidence. Reference the
  research summary where it drove the decision.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Assign exactly one classification per inquiry
- Calibrate confidence to the evidence, not to the message's tone`

const generateSpec = `Respond with a JSON object matching this exact structure:

{
  "body": "<reply text>"
}

Field constraints:
- body: The full reply, ready to send. Plain text, no subject line, no
  signature block.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Mention matched reference materials only by their provided titles
- Never fabricate product capabilities, pricing, or commitments`

var specs = map[Stage]string{
	StageResearch: researchSpec,
	StageClassify: classifySpec,
	StageGenerate: generateSpec,
}

// Spec returns the hardcoded specification for a pipeline stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
