//
// web service for maturity self-assessment against the
// NP 4427 questionnaire.
// the questionnaire (pillars, requirements and weights) is read
// from a spreadsheet, either fetched from a url or uploaded.
// participants submit a 1-5 rating per requirement and the
// service returns the weighted maturity level per pillar and
// overall, classified into a maturity band, and can export the
// scored questionnaire as csv.
//
package otfmaturity
