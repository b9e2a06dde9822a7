// Package scoring turns fill measurements into selected choices and compares
// them against an answer key.
//
// Selection keeps, per question, the first column with the strictly highest
// fill ratio at or above the threshold: equal ratios resolve to the earlier
// choice. Aggregation counts matches overall and per subject, where subject k
// covers questions k*N+1 .. (k+1)*N for N questions per subject.
//
// Malformed answer-key entries (non-numeric question numbers, values outside
// the choice alphabet) are skipped without error.
package scoring
