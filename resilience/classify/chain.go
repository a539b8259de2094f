package classify

import "github.com/jonwraymond/retrykit/resilience"

// Matcher is implemented by classifiers that only recognise some errors.
// Match reports false when the classifier has no verdict for err.
type Matcher interface {
	Match(err error) (resilience.Category, bool)
}

// Chain returns a classifier that asks each classifier in turn.
//
// Declared categories (*resilience.PermanentError, *resilience.RetriableError,
// resilience.ErrTimeout) are honoured before any classifier runs. A Matcher
// contributes a verdict only when Match reports true; any other classifier
// contributes its result unless it is CategoryUnknown. When nothing gives a
// verdict, the default pattern classifier decides.
func Chain(classifiers ...resilience.Classifier) resilience.Classifier {
	chain := make([]resilience.Classifier, 0, len(classifiers))
	for _, c := range classifiers {
		if c != nil {
			chain = append(chain, c)
		}
	}

	return resilience.ClassifierFunc(func(err error) resilience.Category {
		if err == nil {
			return resilience.CategoryUnknown
		}
		if category, ok := resilience.DeclaredCategory(err); ok {
			return category
		}

		for _, c := range chain {
			if m, ok := c.(Matcher); ok {
				if category, ok := m.Match(err); ok {
					return category
				}
				continue
			}
			if category := c.Classify(err); category != resilience.CategoryUnknown {
				return category
			}
		}
		return resilience.Classify(err)
	})
}

// matcherClassifier adapts a match function to both Matcher and
// resilience.Classifier. Used on its own, unrecognised errors fall through
// to the default pattern classifier.
type matcherClassifier struct {
	match func(err error) (resilience.Category, bool)
}

func (m matcherClassifier) Match(err error) (resilience.Category, bool) {
	if err == nil {
		return resilience.CategoryUnknown, false
	}
	if category, ok := resilience.DeclaredCategory(err); ok {
		return category, true
	}
	return m.match(err)
}

func (m matcherClassifier) Classify(err error) resilience.Category {
	if err == nil {
		return resilience.CategoryUnknown
	}
	if category, ok := m.Match(err); ok {
		return category
	}
	return resilience.Classify(err)
}
