// Package color holds the lipgloss styles gestctl uses for banners and
// verdicts. Colors adapt to dark and light backgrounds, and NO_COLOR turns
// styling off.
//
//	color.Initialize(true)
//	fmt.Println(color.Render(color.GradeStyle(card.Grade()), "GRADE: EXCELLENT"))
package color
