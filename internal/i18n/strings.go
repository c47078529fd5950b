package i18n

var tables = map[Language]Strings{
	English: {
		Title:              "🌿 Plant Disease Classifier",
		Subtitle:           "Upload a plant leaf image for AI-powered disease detection and treatment recommendations",
		LanguageLabel:      "Select Language / भाषा चुनें",
		AboutHeader:        "About",
		AboutText:          "This application uses deep learning to identify plant diseases from leaf images.\n\nSupported Plants:\n- Apple\n- Corn (Maize)\n- Grape\n- Potato\n- Tomato\n\nFeatures:\n- Disease identification\n- Treatment recommendations\n- Hindi translations",
		InstructionsHeader: "Instructions",
		InstructionsText:   "1. Upload a clear image of the plant leaf\n2. Click 'Analyze Disease'\n3. View results and recommendations",
		UploadHeader:       "📤 Upload Plant Leaf Image",
		UploadPrompt:       "Choose an image...",
		UploadInfo:         "👆 Please upload an image to get started",
		AnalyzeButton:      "🔬 Analyze Disease",
		Analyzing:          "🔍 Analyzing image...",
		AnalysisComplete:   "✅ Analysis Complete!",
		DetectedCondition:  "Detected Condition",
		Confidence:         "Confidence",
		DiseaseInfoHeader:  "📋 Disease Information",
		SymptomsHeader:     "🔍 Symptoms",
		TreatmentHeader:    "💊 Treatment & Management",
		FooterText:         "🌱 Plant Disease Classifier",
		Disclaimer:         "For educational purposes only. Consult agricultural experts for serious infestations.",
		InvalidImage:       "Please upload a valid image (JPEG or PNG).",
		UploadTooLarge:     "The image is too large. Please upload a smaller file.",
		NoRecord:           "No detailed information is available for this condition.",
	},
	Hindi: {
		Title:              "🌿 पौधे रोग पहचान प्रणाली",
		Subtitle:           "एआई-संचालित रोग पहचान और उपचार सिफारिशों के लिए पौधे की पत्ती की छवि अपलोड करें",
		LanguageLabel:      "भाषा चुनें / Select Language",
		AboutHeader:        "परिचय",
		AboutText:          "यह एप्लिकेशन पत्तियों की छवियों से पौधों की बीमारियों की पहचान करने के लिए डीप लर्निंग का उपयोग करता है।\n\nसमर्थित पौधे:\n- सेब\n- मक्का\n- अंगूर\n- आलू\n- टमाटर\n\nविशेषताएं:\n- रोग की पहचान\n- उपचार की सिफारिशें\n- हिंदी अनुवाद",
		InstructionsHeader: "निर्देश",
		InstructionsText:   "1. पौधे की पत्ती की स्पष्ट तस्वीर अपलोड करें\n2. 'रोग का विश्लेषण करें' पर क्लिक करें\n3. परिणाम और सिफारिशें देखें",
		UploadHeader:       "📤 पौधे की पत्ती की छवि अपलोड करें",
		UploadPrompt:       "एक छवि चुनें...",
		UploadInfo:         "👆 कृपया शुरू करने के लिए एक छवि अपलोड करें",
		AnalyzeButton:      "🔬 रोग का विश्लेषण करें",
		Analyzing:          "🔍 छवि का विश्लेषण किया जा रहा है...",
		AnalysisComplete:   "✅ विश्लेषण पूर्ण!",
		DetectedCondition:  "पहचानी गई स्थिति",
		Confidence:         "विश्वास स्तर",
		DiseaseInfoHeader:  "📋 रोग की जानकारी",
		SymptomsHeader:     "🔍 लक्षण",
		TreatmentHeader:    "💊 उपचार और प्रबंधन",
		FooterText:         "🌱 पौधे रोग पहचान प्रणाली",
		Disclaimer:         "केवल शैक्षिक उद्देश्यों के लिए। गंभीर संक्रमण के लिए कृषि विशेषज्ञों से परामर्श करें।",
		InvalidImage:       "कृपया एक मान्य छवि अपलोड करें (JPEG या PNG)।",
		UploadTooLarge:     "छवि बहुत बड़ी है। कृपया छोटी फ़ाइल अपलोड करें।",
		NoRecord:           "इस स्थिति के लिए कोई विस्तृत जानकारी उपलब्ध नहीं है।",
	},
}
