// Copyright 2025 Worklane Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package notify

import "fmt"

// AdminRequestMail builds the approval mail delivered to the resolved
// recipient. The links embed the single-use approval token.
func AdminRequestMail(requesterEmail, message, baseURL, token string) (subject, body string) {
	subject = fmt.Sprintf("Admin access request from %s", requesterEmail)
	body = fmt.Sprintf(
		"%s has requested admin access for their organization.\n\n"+
			"Message: %s\n\n"+
			"Approve: %s/admin-requests/process?token=%s&action=approve\n"+
			"Deny:    %s/admin-requests/process?token=%s&action=deny\n\n"+
			"This request expires 24 hours after submission.\n",
		requesterEmail, message, baseURL, token, baseURL, token)
	return subject, body
}

// DecisionMail builds the outcome mail delivered to the requester.
func DecisionMail(approved bool, reason string) (subject, body string) {
	if approved {
		subject = "Your admin access request was approved"
		body = "Your request for admin access was approved. Your new role is active now.\n"
		return subject, body
	}
	subject = "Your admin access request was denied"
	body = "Your request for admin access was denied.\n"
	if reason != "" {
		body += fmt.Sprintf("Reason: %s\n", reason)
	}
	return subject, body
}
