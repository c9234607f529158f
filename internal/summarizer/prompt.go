package summarizer

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/meeting-summarizer/internal/models"
)

const summaryPrompt = `Create a visually appealing and well-structured business meeting summary using the following format:

⭐️ EXECUTIVE SUMMARY
══════════════════
Brief 2-3 line overview of the meeting's key achievement or main purpose.

📅 MEETING DETAILS
════════════════
• Date & Time: [Format: Day, Date at Time]
• Duration: [X hours/minutes]
• Location: [Physical/Virtual location]
• Meeting Type: [Format/Purpose]

👥 KEY PARTICIPANTS
════════════════
• Chair: [Meeting leader name/role]
• Core Attendees: [Key people]
• Teams Represented: [Departments/Groups]

🎯 MAIN OBJECTIVES
════════════════
1. [Primary goal]
2. [Secondary goal]
3. [Additional goals if any]

💫 KEY DISCUSSION POINTS
═══════════════════
1. [Topic 1]
   • Detailed point
   • Key insights
   • Concerns raised

2. [Topic 2]
   • Detailed point
   • Key insights
   • Concerns raised

📊 DECISIONS & OUTCOMES
══════════════════
✓ [Major decision 1]
✓ [Major decision 2]
✓ [Major decision 3]

⚡️ ACTION ITEMS
═════════════
1. [Action Item]
   • Owner: [Name]
   • Deadline: [Date]
   • Dependencies: [If any]

🔄 NEXT STEPS
════════════
• [Immediate next step]
• [Follow-up action]
• [Future consideration]
%s
Content to analyze:
%s
`

// buildPrompt appends the transcript verbatim, preceded by the event context
// when one was matched.
func buildPrompt(transcript string, match *models.MatchResult) string {
	block := ""
	if match != nil {
		block = "\n" + meetingContext(match.Event) + "\n"
	}
	return fmt.Sprintf(summaryPrompt, block, transcript)
}

func meetingContext(ev models.CalendarEvent) string {
	var sb strings.Builder
	sb.WriteString("Meeting Context:\n")
	fmt.Fprintf(&sb, "- Event: %s\n", orNA(ev.Summary))
	fmt.Fprintf(&sb, "- Date: %s\n", orNA(ev.Start.String()))
	fmt.Fprintf(&sb, "- Location: %s\n", orNA(ev.Location))
	fmt.Fprintf(&sb, "- Organizer: %s\n", orNA(ev.Organizer))
	fmt.Fprintf(&sb, "- Attendees: %s\n", ev.AttendeeList())
	fmt.Fprintf(&sb, "- Description: %s\n", orNA(ev.Description))
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
