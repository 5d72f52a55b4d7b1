package advisor

// Tier is the user-selected fitness level keying the exercise pool.
type Tier string

const (
	TierBeginner     Tier = "Beginner"
	TierIntermediate Tier = "Intermediate"
	TierAdvanced     Tier = "Advanced"
)

// Preference is the user-selected diet type keying the meal pool.
type Preference string

const (
	Vegetarian    Preference = "Vegetarian"
	NonVegetarian Preference = "Non-Vegetarian"
)

type Category string

const (
	Cardio      Category = "Cardio"
	Strength    Category = "Strength"
	Flexibility Category = "Flexibility"
	Recovery    Category = "Recovery"
)

type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Snacks    MealType = "Snacks"
)

// MealTypes lists the meal slots of a day in serving order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snacks}

// Days of the plan week. Sunday is always the last slot and is reserved for
// active recovery.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const sundayIndex = 6

// RecoveryActivity is the fixed Sunday entry, independent of tier.
const RecoveryActivity = "Active Recovery - Light Yoga / Meditation"

var weekdayCategories = []Category{Cardio, Strength, Flexibility}

var exercisePool = map[Tier]map[Category][]string{
	TierBeginner: {
		Cardio: {
			"Brisk Walking (25 mins) - Improves insulin sensitivity",
			"Light Cycling (20 mins) - Supports weight balance",
		},
		Strength: {
			"Bodyweight Squats (2x12) - Hormonal balance support",
			"Wall Push-ups (2x10) - Metabolism boost",
		},
		Flexibility: {
			"PCOS Yoga Flow (20 mins) - Stress reduction",
			"Stretching Routine (15 mins) - Cortisol control",
		},
	},
	TierIntermediate: {
		Cardio: {
			"Jogging (30 mins) - Fat metabolism boost",
			"Dance Workout (30 mins) - Hormone regulation",
		},
		Strength: {
			"Lunges (3x12) - Lower body strength",
			"Plank (3x30 sec) - Core stability",
		},
		Flexibility: {
			"Yoga Flow (25 mins) - Stress & cortisol reduction",
			"Mobility Drills (20 mins)",
		},
	},
	TierAdvanced: {
		Cardio: {
			"HIIT (30 mins) - Insulin resistance improvement",
			"Sprint Intervals (25 mins)",
		},
		Strength: {
			"Burpees (3x15) - Fat burning",
			"Weighted Squats (3x12)",
		},
		Flexibility: {
			"Power Yoga (30 mins)",
			"Deep Stretching (25 mins)",
		},
	},
}

var mealPool = map[Preference]map[MealType][]string{
	Vegetarian: {
		Breakfast: {
			"Oats with Chia & Nuts - High fiber, controls insulin",
			"Vegetable Upma - Low GI carbs",
			"Greek Yogurt + Berries - Protein rich",
			"Avocado Toast (Multigrain)",
		},
		Lunch: {
			"Brown Rice + Dal + Veggies",
			"Quinoa Salad + Paneer",
			"Multigrain Roti + Sabzi + Curd",
			"Millet Bowl + Stir Fry Veggies",
		},
		Dinner: {
			"Vegetable Soup + Sprouts Salad",
			"Paneer Stir Fry + Salad",
			"Grilled Tofu + Sauteed Veggies",
			"Lettuce Wraps + Beans",
		},
		Snacks: {
			"Almonds & Walnuts",
			"Apple + Peanut Butter",
			"Carrot & Hummus",
			"Green Tea + Roasted Chana",
		},
	},
	NonVegetarian: {
		Breakfast: {
			"Boiled Eggs + Multigrain Toast",
			"Oats + Nuts + Seeds",
			"Greek Yogurt + Berries",
			"Avocado Egg Toast",
		},
		Lunch: {
			"Grilled Chicken + Brown Rice",
			"Fish Curry + Millet",
			"Chicken Salad + Olive Oil",
			"Egg Curry + Multigrain Roti",
		},
		Dinner: {
			"Chicken Soup + Veggies",
			"Grilled Fish + Salad",
			"Egg Bhurji + Sauteed Veggies",
			"Stir Fry Chicken Bowl",
		},
		Snacks: {
			"Mixed Nuts",
			"Boiled Egg",
			"Apple + Peanut Butter",
			"Green Tea + Seeds Mix",
		},
	},
}

// CategoryForDay returns the fixed weekday category rotation: Cardio,
// Strength, Flexibility repeating from Monday; Sunday is Recovery.
func CategoryForDay(dayIdx int) Category {
	if dayIdx == sundayIndex {
		return Recovery
	}
	return weekdayCategories[dayIdx%3]
}
