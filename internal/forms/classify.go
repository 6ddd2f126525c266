package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// placeholderTokens flag option texts that are prompts rather than answers.
// The list is multilingual because target forms localize their placeholders.
var placeholderTokens = []string{
	"select", "sélect", "selecciona", "seleccione",
	"choose", "choisissez", "choisir",
	"opción", "option",
}

// IsPlaceholder reports whether a value is a placeholder/sentinel such as
// "Select an option" rather than a real answer.
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	for _, tok := range placeholderTokens {
		if strings.Contains(v, tok) {
			return true
		}
	}
	return false
}

// ScanStep parses the rendered HTML of one form step into a typed Step.
// Classification is deterministic for identical input. Elements whose label
// cannot be established are recorded in Step.Skipped instead of failing the
// scan.
func ScanStep(html string) (*Step, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &StepParseError{Message: "invalid step HTML", Cause: err}
	}

	root := doc.Find("form").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		return nil, &StepParseError{Message: "no form or body in step snapshot"}
	}

	step := &Step{}
	seenRadioGroups := make(map[string]bool)

	root.Find("input, select, textarea").Each(func(_ int, control *goquery.Selection) {
		if skipControl(control) {
			return
		}
		if goquery.NodeName(control) == "input" {
			if name, ok := control.Attr("name"); ok && inputType(control) == "radio" {
				if seenRadioGroups[name] {
					return
				}
				seenRadioGroups[name] = true
			}
		}

		el, err := Classify(control, root)
		if err != nil {
			step.Skipped = append(step.Skipped, err.Error())
			return
		}
		step.Elements = append(step.Elements, *el)
	})

	step.Action = findPrimaryAction(doc)
	return step, nil
}

// Classify inspects one interactive control and its surrounding question
// block and returns a typed element descriptor. Precedence: explicit numeric
// marker, file input, date affordance, enumerated options, free text.
func Classify(control *goquery.Selection, root *goquery.Selection) (*Element, error) {
	block := questionBlock(control)
	kind := detectKind(control)

	el := &Element{
		Kind:        kind,
		Ref:         cssRef(control),
		Widget:      goquery.NodeName(control),
		Constraints: readConstraints(control, block),
	}

	switch kind {
	case KindSingleChoice:
		if goquery.NodeName(control) == "select" {
			populateSelect(control, el)
		} else {
			populateRadioGroup(control, root, el)
		}
	case KindMultiChoiceDropdown:
		populateSelect(control, el)
	case KindBooleanCheckbox:
		if checked(control) {
			el.CurrentValue = "true"
		}
	case KindFreeText:
		el.Multiline = goquery.NodeName(control) == "textarea"
		el.CurrentValue = strings.TrimSpace(control.AttrOr("value", ""))
		if el.Multiline {
			el.CurrentValue = strings.TrimSpace(control.Text())
		}
	case KindNumericText, KindDate:
		el.CurrentValue = strings.TrimSpace(control.AttrOr("value", ""))
	}

	label := questionLabel(control, block, el)
	if label == "" {
		return nil, &ClassificationAmbiguousError{Ref: el.Ref, Message: "no label text associated with control"}
	}
	el.Label = label
	el.Signature = Signature(label)
	el.ValidationError = inlineError(block)
	return el, nil
}

// skipControl filters controls that are not answerable inputs.
func skipControl(control *goquery.Selection) bool {
	if goquery.NodeName(control) != "input" {
		return false
	}
	switch inputType(control) {
	case "hidden", "submit", "button", "image", "reset":
		return true
	}
	return false
}

func inputType(control *goquery.Selection) string {
	return strings.ToLower(control.AttrOr("type", "text"))
}

// detectKind applies the classification precedence rules to one control.
func detectKind(control *goquery.Selection) ElementKind {
	tag := goquery.NodeName(control)

	// Explicit numeric marker in the element identity wins over everything.
	// Identity spans id, name, type and class: forms commonly tag numeric
	// questions only through a class like "numeric-input".
	identity := strings.ToLower(strings.Join([]string{
		control.AttrOr("id", ""),
		control.AttrOr("name", ""),
		control.AttrOr("type", ""),
		control.AttrOr("class", ""),
	}, " "))
	if strings.Contains(identity, "numeric") {
		return KindNumericText
	}

	if tag == "input" {
		switch inputType(control) {
		case "file":
			return KindFileUpload
		case "date":
			return KindDate
		case "number":
			return KindNumericText
		case "checkbox":
			return KindBooleanCheckbox
		case "radio":
			return KindSingleChoice
		}
		if strings.Contains(strings.ToLower(control.AttrOr("class", "")), "datepicker") {
			return KindDate
		}
		return KindFreeText
	}

	if tag == "select" {
		if _, multiple := control.Attr("multiple"); multiple {
			return KindMultiChoiceDropdown
		}
		return KindSingleChoice
	}

	return KindFreeText
}

// questionBlock ascends from a control to the outermost ancestor that still
// contains only this logical question. Labels for target forms nest
// arbitrarily deep, so a flat sibling lookup is not enough.
func questionBlock(control *goquery.Selection) *goquery.Selection {
	cur := control
	for {
		parent := cur.Parent()
		if parent.Length() == 0 || parent.Is("form") || parent.Is("body") || parent.Is("html") {
			return cur
		}
		if distinctControlGroups(parent) > 1 {
			return cur
		}
		cur = parent
	}
}

// controlGroupKey groups radio inputs sharing a name into one logical
// question; every other control is its own group.
func controlGroupKey(control *goquery.Selection) string {
	if control.Length() == 0 {
		return ""
	}
	if goquery.NodeName(control) == "input" && inputType(control) == "radio" {
		if name, ok := control.Attr("name"); ok {
			return "radio:" + name
		}
	}
	return "ref:" + cssRef(control)
}

func distinctControlGroups(s *goquery.Selection) int {
	groups := make(map[string]bool)
	s.Find("input, select, textarea").Each(func(_ int, control *goquery.Selection) {
		if skipControl(control) {
			return
		}
		groups[controlGroupKey(control)] = true
	})
	return len(groups)
}

// questionLabel joins every visible text fragment that describes the
// question into one coherent string. For choice kinds the per-option labels
// are excluded so only the group title remains.
func questionLabel(control *goquery.Selection, block *goquery.Selection, el *Element) string {
	// Direct label[for] association has priority when the control has an id.
	if id, ok := control.Attr("id"); ok && id != "" {
		isRadioOption := goquery.NodeName(control) == "input" && inputType(control) == "radio"
		if lbl := control.Closest("form, body").Find(`label[for="` + id + `"]`); lbl.Length() > 0 && !isRadioOption {
			if txt := collapseWhitespace(lbl.First().Text()); txt != "" {
				return txt
			}
		}
	}

	optionRefs := make(map[string]bool, len(el.Options))
	for _, opt := range el.Options {
		optionRefs[strings.ToLower(opt.Text)] = true
	}

	var fragments []string
	if legend := block.Find("legend"); legend.Length() > 0 {
		fragments = append(fragments, collapseWhitespace(legend.First().Text()))
	}
	if len(fragments) == 0 {
		block.Find("label, [data-form-label]").Each(func(_ int, lbl *goquery.Selection) {
			txt := collapseWhitespace(lbl.Text())
			if txt == "" || optionRefs[strings.ToLower(txt)] {
				return
			}
			fragments = append(fragments, txt)
		})
	}
	if len(fragments) == 0 {
		if aria := strings.TrimSpace(control.AttrOr("aria-label", "")); aria != "" {
			fragments = append(fragments, collapseWhitespace(aria))
		}
	}
	return strings.TrimSpace(strings.Join(fragments, " "))
}

func populateSelect(control *goquery.Selection, el *Element) {
	control.Find("option").Each(func(_ int, opt *goquery.Selection) {
		text := collapseWhitespace(opt.Text())
		if text == "" {
			return
		}
		option := Option{
			Text:        text,
			Ref:         cssRef(control),
			Placeholder: IsPlaceholder(text),
		}
		el.Options = append(el.Options, option)
		if _, selected := opt.Attr("selected"); selected && !option.Placeholder {
			el.CurrentValue = text
		}
	})
}

func populateRadioGroup(control *goquery.Selection, root *goquery.Selection, el *Element) {
	name, _ := control.Attr("name")
	radios := root.Find(`input[type="radio"]`)
	radios.Each(func(_ int, radio *goquery.Selection) {
		if radio.AttrOr("name", "") != name {
			return
		}
		text := radioOptionLabel(radio, root)
		if text == "" {
			return
		}
		el.Options = append(el.Options, Option{
			Text:        text,
			Ref:         cssRef(radio),
			Placeholder: false,
		})
		if checked(radio) {
			el.CurrentValue = text
		}
	})
}

// radioOptionLabel finds the visible text of one radio option: label[for],
// an enclosing label, or the immediately following label sibling.
func radioOptionLabel(radio *goquery.Selection, root *goquery.Selection) string {
	if id, ok := radio.Attr("id"); ok && id != "" {
		if lbl := root.Find(`label[for="` + id + `"]`); lbl.Length() > 0 {
			return collapseWhitespace(lbl.First().Text())
		}
	}
	if wrapper := radio.Closest("label"); wrapper.Length() > 0 {
		return collapseWhitespace(wrapper.Text())
	}
	if next := radio.Next(); next.Is("label") {
		return collapseWhitespace(next.Text())
	}
	return ""
}

func checked(control *goquery.Selection) bool {
	_, ok := control.Attr("checked")
	return ok
}

func readConstraints(control *goquery.Selection, block *goquery.Selection) Constraints {
	c := Constraints{}
	if _, ok := control.Attr("required"); ok {
		c.Required = true
	}
	if control.AttrOr("aria-required", "") == "true" {
		c.Required = true
	}
	if strings.Contains(strings.ToLower(block.AttrOr("class", "")), "required") {
		c.Required = true
	}
	if v, err := strconv.Atoi(control.AttrOr("min", "")); err == nil {
		c.Min = &v
	}
	if v, err := strconv.Atoi(control.AttrOr("max", "")); err == nil {
		c.Max = &v
	}
	if accept := control.AttrOr("accept", ""); accept != "" {
		for _, t := range strings.Split(accept, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.Accept = append(c.Accept, t)
			}
		}
	}
	return c
}

// inlineError returns the text of an active validation indicator inside a
// question block. Forms keep stale error nodes in the DOM after the problem
// is fixed, so hidden nodes are ignored.
func inlineError(block *goquery.Selection) string {
	var msg string
	block.Find(`[role="alert"], [class*="error"], [class*="feedback--error"]`).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if _, hidden := node.Attr("hidden"); hidden {
			return true
		}
		class := strings.ToLower(node.AttrOr("class", ""))
		if strings.Contains(class, "hidden") {
			return true
		}
		if strings.Contains(strings.ToLower(node.AttrOr("style", "")), "display:none") {
			return true
		}
		if txt := collapseWhitespace(node.Text()); txt != "" {
			msg = txt
			return false
		}
		return true
	})
	return msg
}

// findPrimaryAction locates the step's advance/submit affordance. A step is
// terminal when a submit affordance is present and no next-step affordance
// exists.
func findPrimaryAction(doc *goquery.Document) *Action {
	var next, submit *Action
	doc.Find(`button, input[type="submit"]`).Each(func(_ int, btn *goquery.Selection) {
		label := collapseWhitespace(btn.Text())
		if label == "" {
			label = collapseWhitespace(btn.AttrOr("aria-label", btn.AttrOr("value", "")))
		}
		lower := strings.ToLower(label)
		switch {
		case strings.Contains(lower, "submit"):
			if submit == nil {
				submit = &Action{Ref: cssRef(btn), Label: label, Submit: true}
			}
		case strings.Contains(lower, "next"),
			strings.Contains(lower, "review"),
			strings.Contains(lower, "continue"):
			if next == nil {
				next = &Action{Ref: cssRef(btn), Label: label}
			}
		}
	})
	if next != nil {
		return next
	}
	return submit
}

// cssRef derives a selector for a node that stays stable across idempotent
// re-reads of the same step: id first, then name, then a positional path.
func cssRef(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if id := s.AttrOr("id", ""); id != "" {
		return "#" + id
	}
	tag := goquery.NodeName(s)
	if name := s.AttrOr("name", ""); name != "" && tag != "" {
		if inputType(s) == "radio" {
			if v := s.AttrOr("value", ""); v != "" {
				return fmt.Sprintf(`%s[name=%q][value=%q]`, tag, name, v)
			}
		}
		return fmt.Sprintf(`%s[name=%q]`, tag, name)
	}

	parent := s.Parent()
	if parent.Length() == 0 || tag == "html" || strings.HasPrefix(goquery.NodeName(parent), "#") {
		return tag
	}
	idx := 1
	s.PrevAll().Each(func(_ int, sib *goquery.Selection) {
		if goquery.NodeName(sib) == tag {
			idx++
		}
	})
	return fmt.Sprintf("%s > %s:nth-of-type(%d)", cssRef(parent), tag, idx)
}
