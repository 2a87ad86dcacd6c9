package sim

import (
	"fmt"

	"github.com/jwebster45206/survival-engine/pkg/actor"
	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/reproduction"
)

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func describeAffliction(ev affliction.Event) string {
	name := displayName(ev.Name, ev.DefinitionID)
	if ev.BodyPart != "" {
		name = fmt.Sprintf("%s (%s)", name, ev.BodyPart)
	}
	switch ev.Kind {
	case affliction.EventProgressed, affliction.EventWorsened:
		if ev.Terminal {
			return fmt.Sprintf("Your %s has reached its worst stage.", name)
		}
		return fmt.Sprintf("Your %s has worsened to %s.", name, ev.Severity)
	case affliction.EventRemitted, affliction.EventHealed:
		return fmt.Sprintf("Your %s has eased to %s.", name, ev.Severity)
	case affliction.EventCleared:
		return fmt.Sprintf("You are free of %s.", name)
	case affliction.EventRecovered:
		return fmt.Sprintf("Your %s has fully healed.", name)
	case affliction.EventPermanent:
		return fmt.Sprintf("Your %s healed badly and left lasting damage.", name)
	}
	return ""
}

func describeMating(o reproduction.MatingOutcome, rival *actor.Rival) string {
	opponent := "a rival"
	if rival != nil {
		opponent = displayName(rival.Spec.Name, rival.Spec.ID)
	}
	switch {
	case !o.Contested:
		return "You found a mate."
	case o.Won:
		return fmt.Sprintf("You drove off %s and won the right to mate.", opponent)
	case o.Injured:
		return fmt.Sprintf("You lost the contest with %s and were hurt.", opponent)
	default:
		return fmt.Sprintf("You lost the contest with %s.", opponent)
	}
}

// describeRival reports how badly a beaten rival was hurt; empty otherwise.
func describeRival(o reproduction.MatingOutcome, rival *actor.Rival) string {
	if rival == nil || o.RivalWound == 0 {
		return ""
	}
	name := displayName(rival.Spec.Name, rival.Spec.ID)
	if o.RivalHealth*2 <= rival.Actor.MaxHP() {
		return fmt.Sprintf("You left %s badly hurt.", name)
	}
	return fmt.Sprintf("You left %s bloodied.", name)
}

func describeBrood(b Brood, young, youngPlural string) []string {
	if young == "" {
		young = "offspring"
	}
	if youngPlural == "" {
		youngPlural = young
	}
	noun := func(n int) string {
		if n == 1 {
			return young
		}
		return youngPlural
	}
	var out []string
	if n := len(b.Born); n > 0 {
		out = append(out, fmt.Sprintf("You gave birth to %d %s.", n, noun(n)))
	}
	if n := len(b.Independent); n > 0 {
		out = append(out, fmt.Sprintf("%d %s struck out on their own.", n, noun(n)))
	}
	for _, o := range b.Died {
		out = append(out, fmt.Sprintf("One of your %s died: %s.", youngPlural, o.CauseOfDeath))
	}
	if n := len(b.Matured); n > 0 {
		out = append(out, fmt.Sprintf("%d %s reached adulthood.", n, noun(n)))
	}
	return out
}
