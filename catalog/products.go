// Package catalog holds the fixed demo product pool and samples it into
// candidate records when no live page is available.
package catalog

import (
	"strings"

	"github.com/use-agent/velocity/models"
)

// Category names as they appear on records.
const (
	CatElectronics           = "Electronics"
	CatWearables             = "Wearables"
	CatHomeAppliances        = "Home Appliances"
	CatFashion               = "Fashion"
	CatHomeAndGarden         = "Home & Garden"
	CatBeautyAndPersonalCare = "Beauty & Personal Care"
	CatOfficeAndProductivity = "Office & Productivity"
)

// Product is one pre-authored demo record.
type Product struct {
	Name       string
	Category   string
	Competitor string
	Price      float64
	Sentiment  float64
	Text       string
	Insight    string
}

// Slug turns the product name into its URL path segment.
func (p Product) Slug() string {
	return strings.ReplaceAll(strings.ToLower(p.Name), " ", "-")
}

// Item converts the product into a demo-mode candidate with synthesized
// source URLs under baseURL.
func (p Product) Item(baseURL string) models.RawScrapedItem {
	base := strings.TrimRight(baseURL, "/")
	return models.RawScrapedItem{
		Name:               p.Name,
		Category:           p.Category,
		Competitor:         p.Competitor,
		Price:              models.Float(p.Price),
		Currency:           models.DefaultCurrency,
		SentimentScore:     models.Float(p.Sentiment),
		SentimentText:      models.Truncate(p.Text, models.MaxSentimentTextLength),
		SourceURL:          base + "/products/" + p.Slug(),
		SentimentSourceURL: base + "/reviews/" + p.Slug(),
		Insight:            p.Insight,
		Mode:               models.ModeDemo,
	}
}

// Products returns a copy of the demo pool.
func Products() []Product {
	return append([]Product(nil), pool...)
}

var pool = []Product{
	// Electronics
	{Name: "UltraSound Pro Headphones", Category: CatElectronics, Competitor: "AudioTech", Price: 149.99, Sentiment: 0.85,
		Text: "Excellent sound quality and comfortable fit",
		Insight: "Strong customer satisfaction. Premium pricing justified by quality. Recommend highlighting noise cancellation in marketing."},
	{Name: "SmartHome Hub Pro", Category: CatElectronics, Competitor: "HomeTech", Price: 89.99, Sentiment: 0.78,
		Text: "Easy setup, works with most devices",
		Insight: "Good value proposition at $90. Consider bundling with smart bulbs to increase AOV."},
	{Name: "Wireless Charger Pad", Category: CatElectronics, Competitor: "ChargeTech", Price: 29.99, Sentiment: 0.65,
		Text: "Works fine but charges slowly",
		Insight: "Price competitive but sentiment declining. Monitor competitor fast-charging offerings."},
	{Name: "4K Webcam Pro", Category: CatElectronics, Competitor: "VisionTech", Price: 119.99, Sentiment: 0.82,
		Text: "Crystal clear video, perfect for remote work",
		Insight: "Strong WFH market fit. Price 15% above market avg - consider promotion to gain share."},
	{Name: "Bluetooth Speaker Mini", Category: CatElectronics, Competitor: "SoundWave", Price: 39.99, Sentiment: 0.71,
		Text: "Good sound for the size",
		Insight: "Entry-level product performing well. Opportunity to upsell to premium line."},

	// Wearables
	{Name: "FitTrack Elite Watch", Category: CatWearables, Competitor: "FitnessTech", Price: 199.99, Sentiment: 0.72,
		Text: "Good fitness tracking, battery could be better",
		Insight: "Battery life complaints increasing. R&D should prioritize longer battery in next version."},
	{Name: "SmartBand Health", Category: CatWearables, Competitor: "HealthTrack", Price: 79.99, Sentiment: 0.88,
		Text: "Accurate tracking, comfortable all day",
		Insight: "Exceptional value + high satisfaction. PROMOTE HEAVILY - this is a market winner."},
	{Name: "RunPro GPS Watch", Category: CatWearables, Competitor: "RunTech", Price: 249.99, Sentiment: 0.79,
		Text: "Precise GPS, great for marathons",
		Insight: "Niche product for serious runners. Target running communities and marathon events."},
	{Name: "Sleep Tracker Ring", Category: CatWearables, Competitor: "SleepTech", Price: 299.99, Sentiment: 0.74,
		Text: "Interesting insights but pricey",
		Insight: "Premium pricing limiting adoption. Consider financing options to reduce barrier."},

	// Home Appliances
	{Name: "BrewMaster Deluxe", Category: CatHomeAppliances, Competitor: "KitchenPro", Price: 89.99, Sentiment: 0.68,
		Text: "Makes great coffee, a bit noisy",
		Insight: "Noise complaints detected. Highlight programmable features to offset concern."},
	{Name: "Air Purifier Max", Category: CatHomeAppliances, Competitor: "CleanAir", Price: 159.99, Sentiment: 0.91,
		Text: "Drastically improved air quality",
		Insight: "TOP PERFORMER - 91% positive sentiment. Capitalize on health trends, emphasize in ads."},
	{Name: "Robot Vacuum Pro", Category: CatHomeAppliances, Competitor: "AutoClean", Price: 299.99, Sentiment: 0.76,
		Text: "Good cleaning, occasionally gets stuck",
		Insight: "Premium segment. Reliability concerns - ensure customer success team follows up."},
	{Name: "Smart Thermostat", Category: CatHomeAppliances, Competitor: "EcoHome", Price: 129.99, Sentiment: 0.83,
		Text: "Saves money, easy to use",
		Insight: "Energy savings resonate with customers. Quantify ROI in marketing (payback period)."},
	{Name: "Blender Ultra", Category: CatHomeAppliances, Competitor: "BlendTech", Price: 69.99, Sentiment: 0.70,
		Text: "Powerful but loud",
		Insight: "Performance vs noise tradeoff. Position as professional-grade for enthusiasts."},

	// Fashion
	{Name: "RunComfort Sneakers", Category: CatFashion, Competitor: "SportStyle", Price: 79.99, Sentiment: 0.86,
		Text: "Most comfortable shoes I own",
		Insight: "Comfort is key differentiator. Expand color options to capture more market."},
	{Name: "Urban Backpack Pro", Category: CatFashion, Competitor: "CityGear", Price: 59.99, Sentiment: 0.81,
		Text: "Durable and stylish",
		Insight: "Strong appeal to young professionals. Cross-sell with laptop sleeves."},
	{Name: "Winter Jacket Elite", Category: CatFashion, Competitor: "OutdoorWear", Price: 149.99, Sentiment: 0.77,
		Text: "Warm but heavy",
		Insight: "Seasonal product. Weight complaints - consider lightweight insulation R&D."},
	{Name: "Casual Watch Classic", Category: CatFashion, Competitor: "TimeTech", Price: 99.99, Sentiment: 0.75,
		Text: "Nice design, good value",
		Insight: "Mid-tier positioning. Limited edition releases could create urgency."},

	// Home & Garden
	{Name: "LED Grow Light", Category: CatHomeAndGarden, Competitor: "PlantTech", Price: 49.99, Sentiment: 0.89,
		Text: "Plants are thriving!",
		Insight: "Urban gardening trend growing. Bundle with starter plant kits."},
	{Name: "Smart Sprinkler System", Category: CatHomeAndGarden, Competitor: "WaterSmart", Price: 199.99, Sentiment: 0.73,
		Text: "Saves water, setup was tricky",
		Insight: "Installation friction. Offer free setup service or improve instructions."},
	{Name: "Outdoor Security Camera", Category: CatHomeAndGarden, Competitor: "SecureHome", Price: 129.99, Sentiment: 0.84,
		Text: "Clear night vision, easy install",
		Insight: "Security is high-priority. Create multi-camera bundles for whole-home coverage."},
	{Name: "Solar Path Lights", Category: CatHomeAndGarden, Competitor: "EcoLight", Price: 34.99, Sentiment: 0.69,
		Text: "Nice ambiance but not very bright",
		Insight: "Brightness issues. Next version should prioritize lumens. Price sensitive segment."},

	// Beauty & Personal Care
	{Name: "Sonic Toothbrush Pro", Category: CatBeautyAndPersonalCare, Competitor: "DentalTech", Price: 89.99, Sentiment: 0.87,
		Text: "Dentist recommended, works great",
		Insight: "Medical endorsements drive trust. Partner with dental offices for referrals."},
	{Name: "Hair Dryer Ionic", Category: CatBeautyAndPersonalCare, Competitor: "SalonPro", Price: 69.99, Sentiment: 0.80,
		Text: "Dries quickly, reduces frizz",
		Insight: "Professional-quality at consumer price. Influencer partnerships recommended."},
	{Name: "Facial Cleansing Brush", Category: CatBeautyAndPersonalCare, Competitor: "SkinCare", Price: 39.99, Sentiment: 0.76,
		Text: "Skin feels cleaner",
		Insight: "Subscription opportunity for brush head replacements (recurring revenue)."},
	{Name: "LED Mirror Vanity", Category: CatBeautyAndPersonalCare, Competitor: "BeautyTech", Price: 79.99, Sentiment: 0.82,
		Text: "Perfect lighting for makeup",
		Insight: "High engagement on social media. User-generated content strategy recommended."},

	// Office & Productivity
	{Name: "Standing Desk Converter", Category: CatOfficeAndProductivity, Competitor: "ErgoWork", Price: 149.99, Sentiment: 0.78,
		Text: "Good for back pain",
		Insight: "Health benefit is key selling point. Target corporate wellness programs."},
	{Name: "Ergonomic Mouse", Category: CatOfficeAndProductivity, Competitor: "ComfortTech", Price: 49.99, Sentiment: 0.85,
		Text: "No more wrist pain",
		Insight: "Pain-relief messaging resonates. Medical/therapeutic positioning opportunity."},
	{Name: "Wireless Keyboard Slim", Category: CatOfficeAndProductivity, Competitor: "TypeTech", Price: 59.99, Sentiment: 0.74,
		Text: "Quiet typing, nice feel",
		Insight: "Open office appeal. Bundle with mouse for higher cart value."},
	{Name: "Desk Organizer Premium", Category: CatOfficeAndProductivity, Competitor: "OfficePro", Price: 29.99, Sentiment: 0.72,
		Text: "Keeps desk tidy",
		Insight: "Low-cost add-on item. Perfect for cart threshold free shipping promotions."},
	{Name: "Monitor Arm Dual", Category: CatOfficeAndProductivity, Competitor: "ScreenTech", Price: 99.99, Sentiment: 0.81,
		Text: "More desk space, adjustable",
		Insight: "Productivity enhancer. Target remote workers and gamers (dual use cases)."},
	{Name: "Laptop Stand Aluminum", Category: CatOfficeAndProductivity, Competitor: "TechGear", Price: 39.99, Sentiment: 0.79,
		Text: "Better posture, sleek design",
		Insight: "Aesthetics + ergonomics. Instagram-worthy - leverage influencer unboxings."},
	{Name: "Cable Management Kit", Category: CatOfficeAndProductivity, Competitor: "OrganizeTech", Price: 19.99, Sentiment: 0.68,
		Text: "Helps but not perfect",
		Insight: "Utility product with room for improvement. Customer feedback for V2 design."},
	{Name: "USB-C Hub 7-in-1", Category: CatOfficeAndProductivity, Competitor: "ConnectTech", Price: 44.99, Sentiment: 0.83,
		Text: "Essential for new MacBooks",
		Insight: "Mac ecosystem tie-in. Market alongside Apple product launches."},
}
