package interview

import "errors"

// ErrQuestionGeneration is returned when the generation service fails or its
// output cannot be parsed into questions. There is no fallback question set;
// callers surface the failure.
var ErrQuestionGeneration = errors.New("question generation failed")

// ErrEvaluation is returned when scoring the transcript fails. No score is
// recorded; callers surface the failure and allow a retry.
var ErrEvaluation = errors.New("evaluation failed")
