// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package assistant

import "strings"

const (
	promptPreamble = "You are a helpful banking assistant. Answer the user's question based on the following information:\n\n"
	promptClosing  = "If the information provided does not contain the answer, state that you cannot answer based on the given information. Be concise and professional."
)

// BuildPrompt renders the grounded generation prompt. The Information block
// lists passages one per line in rank order and is left out when there are none.
func BuildPrompt(question string, passages []string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	if len(passages) > 0 {
		b.WriteString("Information:\n")
		b.WriteString(strings.Join(passages, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("User's question: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(promptClosing)
	return b.String()
}
