// Package navigation keeps the visible screen consistent with the session.
//
// [Decide] is the pure rule table: given a session snapshot and the current
// location it says whether to wait, stay, or replace the route. [Guard] runs
// Decide whenever the session or the location changes and drives a [Router],
// suppressing redirects to where the app already is or is already going.
package navigation
