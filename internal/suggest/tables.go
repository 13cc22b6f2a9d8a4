package suggest

// Built-in suggestion tables. Strings are plain text; list markup is
// the rendering collaborator's concern.
var builtinTables = map[string]Table{
	"en": {
		Buckets: map[Bucket][]string{
			BucketClear: {
				"Perfect weather for outdoor activities like hiking, picnics, or walks in the park.",
				"Remember to apply sunscreen and stay hydrated when out in the sun.",
				"Great day for outdoor photography!",
			},
			BucketCloudy: {
				"Cloudy weather is good for light outdoor activities like walking, jogging, or cycling.",
				"Good time to visit museums, art galleries, or shopping centers.",
				"Cloudy days offer great lighting for photography without harsh shadows.",
			},
			BucketRain: {
				"Rainy weather is perfect for indoor activities - visit museums, cinemas, or cafes.",
				"If you need to go out, carry an umbrella or wear a waterproof jacket.",
				"Great time for reading or movie watching at home.",
			},
			BucketSnow: {
				"Snow weather is great for winter sports like skiing, sledding, or building snowmen.",
				"Wear warm layers when going outside and be cautious of slippery surfaces.",
				"Perfect time for warm drinks and cozy activities at home.",
			},
			BucketStorm: {
				"During thunderstorms, avoid outdoor activities and stay inside a safe building.",
				"Ensure electronic devices are charged in case of power outages.",
				"Great time for indoor reading or entertainment.",
			},
			BucketFog: {
				"Drive slowly with lights on during foggy conditions and maintain safe distances.",
				"Better for close-to-home activities, avoid long-distance travel if possible.",
				"Fog creates unique atmospheres for photographers to capture.",
			},
			BucketOther: {
				"Adjust your activities according to the current weather conditions.",
				"Check the latest forecast before heading out.",
				"Be prepared with appropriate clothing and gear for the day's weather.",
			},
		},
		Hot:    "Avoid strenuous activities in high temperatures, stay hydrated, and seek shade.",
		Cold:   "Dress warmly in cold temperatures, especially protecting your head, hands, and feet.",
		Wet:    "High chance of precipitation, bring rain gear when going out.",
		Filler: "Be prepared according to weather conditions.",
	},
	"zh": {
		Buckets: map[Bucket][]string{
			BucketClear: {
				"晴朗的天气非常适合户外活动，如远足、野餐或公园漫步。",
				"在阳光下活动时，请记得涂抹防晒霜并多喝水。",
				"今天是拍摄户外照片的绝佳时机！",
			},
			BucketCloudy: {
				"多云天气适合轻度户外活动，如散步、慢跑或骑自行车。",
				"这是参观博物馆、美术馆或购物中心的好时机。",
				"多云天气下的摄影也很有质感，试试抓拍云朵变化！",
			},
			BucketRain: {
				"雨天最适合室内活动，可以访问博物馆、电影院或咖啡厅。",
				"如需外出，请携带雨伞或穿着防水外套。",
				"这是在家享受阅读或看电影的好时机。",
			},
			BucketSnow: {
				"雪天适合冬季运动，如滑雪、雪橇或堆雪人。",
				"外出时请穿着保暖衣物，注意路面可能湿滑。",
				"这是在家享受热饮和温暖活动的好时机。",
			},
			BucketStorm: {
				"雷暴天气请尽量避免户外活动，留在室内安全地方。",
				"确保电子设备已充电，以防停电。",
				"这是在家享受阅读或娱乐活动的好时机。",
			},
			BucketFog: {
				"雾天驾驶请减速并打开车灯，保持安全距离。",
				"适合近距离活动，避免长途旅行。",
				"雾天氛围独特，摄影爱好者可以捕捉迷人景色。",
			},
			BucketOther: {
				"请根据实时天气状况调整您的活动计划。",
				"出门前检查最新天气预报。",
				"随时准备适合当天天气的服装和装备。",
			},
		},
		Hot:    "高温天气请避免剧烈运动，多喝水并寻找阴凉处。",
		Cold:   "低温天气请穿着保暖衣物，特别是保护头部、手部和脚部。",
		Wet:    "有较高降水可能，外出请携带雨具。",
		Filler: "请根据天气状况做好相应准备。",
	},
}
