// In file: internal/prompt/examples.go
package prompt

// Examples is the fixed set of worked examples, in prompt order.
var Examples = []Example{
	{Input: "Show my bookings", Tool: "listUserBookings"},
	{Input: "What trips do I have?", Tool: "listUserBookings"},
	{
		Input:  "Find me a jet in Delhi for 6 passengers under $9000 an hour",
		Tool:   "searchJets",
		Params: map[string]any{"location": "Delhi", "passengers": 6, "max_price": 9000},
	},
	{
		Input:  "What is the status of booking ABC123?",
		Tool:   "getBookingStatus",
		Params: map[string]any{"booking_id": "ABC123"},
	},
	{
		Input:  "Book the Citation X from Mumbai to Goa for 3 passengers",
		Tool:   "createBooking",
		Params: map[string]any{"jet_id": "Citation X", "origin": "Mumbai", "destination": "Goa", "passengers": 3},
	},
	{
		Input:  "Put jet J-42 into maintenance",
		Tool:   "updateFleetJet",
		Params: map[string]any{"jet_id": "J-42", "status": "maintenance"},
	},
	{
		Input:  "Cancel membership M-7 for user U-19",
		Tool:   "manageMembership",
		Params: map[string]any{"action": "cancel", "user_id": "U-19", "membership_id": "M-7"},
	},
	{
		Input:  "Revenue report for January 2025",
		Tool:   "generateReport",
		Params: map[string]any{"type": "revenue", "start_date": "2025-01-01", "end_date": "2025-01-31"},
	},
	{
		Input: "Tell user U-19 their flight is delayed by an hour",
		Tool:  "sendNotification",
		Params: map[string]any{
			"recipient": "U-19", "type": "booking", "subject": "Flight delayed",
			"content": "Your flight is delayed by one hour.",
		},
	},
	{
		Input:  "Hello!",
		Tool:   NoToolNeeded,
		Params: map[string]any{"message": "Hello! How can I help with your travel plans today?"},
	},
}
