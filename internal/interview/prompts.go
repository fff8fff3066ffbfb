package interview

import (
	"fmt"
	"strings"

	"interview-backend/internal/session"
)

func questionsPrompt(resumeText string, n int) string {
	return fmt.Sprintf(`You are a senior-level expert technical interviewer for a Full Stack (React/Node) role.

Your job is to generate %d unique and non-repetitive interview questions strictly from the candidate's resume below.

Mandatory rules:
1. Resume-only topics: questions must ONLY be based on technologies, projects, and roles explicitly in the resume. No generic topics.
2. Question length must match the difficulty:
   - easy (20s): under 15 words, a direct single-sentence query.
   - medium (60s): 1-2 short sentences, around 20-25 words.
   - hard (120s): up to 3 sentences, enough to provide necessary context.
3. Difficulty-to-complexity mapping:
   - easy: definitions, "What is ...?" or "What is the purpose of ...?" questions.
   - medium: "How would you ...?" or "Explain the role of ..." questions requiring a process or use case.
   - hard: "Describe a situation where ..." or "How would you optimize/debug ..." questions about trade-offs, architecture, or performance.
4. Generate 2 easy, 2 medium and 2 hard questions in that proportion.
5. Questions must be different in every call. Technical only; no HR-style or personality questions.

Output format:
Your output must be a strict, raw JSON array. Do not add any text, explanations, or markdown formatting. Each item must have this exact structure:
{
  "id": "<uuid>",
  "text": "<question text>",
  "difficulty": "easy|medium|hard",
  "time_seconds": <20|60|120>,
  "maxScore": 10
}

Candidate resume:
-----------
%s
-----------
`, n, resumeText)
}

func summaryPrompt(resumeText string, transcript string) string {
	return fmt.Sprintf(`You are an expert and fair technical hiring manager. Evaluate the candidate based on their resume and full interview transcript below.

Scoring rules:
1. Be balanced but strict: reward clear, correct, logically reasoned answers; deduct for vague, memorized, or AI-generated-looking answers; give partial credit for incomplete answers that show real understanding.
2. Difficulty weighting: easy questions check basics (low weight), medium check applied understanding (moderate weight), hard check deeper reasoning (high weight). Candidates need not get every hard question perfect.
3. Fairness: a genuine mid-level candidate with real experience in the mentioned skills should land in a passable range (60-75+). Surface-level knowledge scores much lower. Exceptional depth can score above 85.
4. Keep the summary concise: strengths, weaknesses, and whether answers seemed AI-like or copied.

Your response MUST be a valid JSON object with exactly two keys:
{
  "finalScore": <0-100>,
  "summary": "<1-2 sentence professional summary>"
}

Resume:
-----------
%s
-----------

Full interview transcript:
-----------
%s
-----------

Return valid JSON only. No extra text, no markdown.
`, resumeText, transcript)
}

func extractFieldsPrompt(resumeText string) string {
	return fmt.Sprintf(`You are a highly accurate information extractor.

From the resume text below, extract ONLY the candidate's name, email, and phone number.

Strict rules:
1. Always return a single JSON object with exactly these three keys: { "name": "", "email": "", "phone": "" }.
2. If a field is missing, return an empty string for that key.
3. The name must be in Title Case, without titles (Mr., Ms., Dr.).
4. Extract only valid email addresses.
5. Extract the most relevant contact number (digits, spaces, +, parentheses, or - allowed).
6. Output strictly raw JSON. No explanations, no extra text, no markdown.

RESUME:
-----------
%s
-----------
`, resumeText)
}

// transcriptText flattens the answered questions into a question/answer log,
// in question order so the evaluator sees the interview as it happened.
func transcriptText(s session.Session) string {
	var b strings.Builder
	for _, q := range s.Questions {
		rec, ok := s.Answers[q.ID]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Question: ")
		b.WriteString(rec.QuestionText)
		b.WriteString("\nAnswer: ")
		b.WriteString(rec.Answer)
	}
	return b.String()
}
