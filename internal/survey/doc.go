// Package survey holds the SurveyJS definition model and the survey use
// cases: validate, save with ownership, read through a cache, list, delete and
// generate from a prompt.
package survey
