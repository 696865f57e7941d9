// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package props

import (
	"math/rand/v2"
	"strings"
)

// quotes shown on the dashboard, in "message - Author" form.
var quotes = []string{
	"Simplicity is the soul of efficiency. - Austin Freeman",
	"Well begun is half done. - Aristotle",
	"It always seems impossible until it is done. - Nelson Mandela",
	"Quality is not an act, it is a habit. - Aristotle",
	"The secret of getting ahead is getting started. - Mark Twain",
	"Whether you think you can or you think you can't, you're right. - Henry Ford",
	"First, solve the problem. Then, write the code. - John Johnson",
	"Make it work, make it right, make it fast. - Kent Beck",
	"The best way to predict the future is to invent it. - Alan Kay",
	"Stay hungry. Stay foolish.",
}

// randomQuote picks one of the embedded quotes.
func randomQuote() string {
	return quotes[rand.IntN(len(quotes))]
}

// quoteProps splits a quote on its first "-" into message and author.
// Quotes without the separator come through as a single "inspire" value.
func quoteProps(quote string) map[string]string {
	if msg, author, ok := strings.Cut(quote, "-"); ok {
		return map[string]string{
			"message": strings.TrimSpace(msg),
			"author":  strings.TrimSpace(author),
		}
	}
	return map[string]string{"inspire": strings.TrimSpace(quote)}
}
